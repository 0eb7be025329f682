package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForTargetAttachesBuildIDAndTarget(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	logger := ForTarget(base, "build-123", "pdf")
	logger.Info("starting")

	out := buf.String()
	assert.Contains(t, out, "build_id=build-123")
	assert.Contains(t, out, "target=pdf")
}

func TestForStageAttachesStageOnTopOfTarget(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	logger := ForStage(ForTarget(base, "build-123", "pdf"), "jinja_render")
	logger.Info("rendering")

	out := buf.String()
	assert.Contains(t, out, "build_id=build-123")
	assert.Contains(t, out, "target=pdf")
	assert.Contains(t, out, "stage=jinja_render")
}

func TestNewBuildIDReturnsDistinctValues(t *testing.T) {
	a := NewBuildID()
	b := NewBuildID()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}
