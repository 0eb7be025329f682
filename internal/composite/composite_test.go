package composite

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dissemia/disseminate/internal/builder"
	"github.com/dissemia/disseminate/internal/decider"
	"github.com/dissemia/disseminate/internal/docpath"
	"github.com/dissemia/disseminate/internal/registry"
)

// fakeBuilder is a minimal builder.Builder double for exercising the
// composite state machines without shelling out to any real tool.
type fakeBuilder struct {
	out         docpath.Path
	status      builder.Status
	prepareN    int
	stepN       int
	stepsToDone int
	fail        bool
}

func (f *fakeBuilder) Prepare(ctx context.Context) error {
	f.prepareN++
	f.status = builder.StatusReady
	return nil
}

func (f *fakeBuilder) Step(ctx context.Context) (builder.Status, error) {
	if f.status.Done() {
		return f.status, nil
	}
	f.stepN++
	if f.fail {
		f.status = builder.StatusFailed
		return f.status, fmt.Errorf("fakeBuilder: forced failure")
	}
	if f.stepsToDone <= 0 || f.stepN >= f.stepsToDone {
		f.status = builder.StatusDone
	} else {
		f.status = builder.StatusBuilding
	}
	return f.status, nil
}

func (f *fakeBuilder) Status() builder.Status    { return f.status }
func (f *fakeBuilder) OutFilePath() docpath.Path { return f.out }

type stubDecider struct{ needed bool }

func (s stubDecider) Decision(ctx context.Context, inputs []docpath.Path, output docpath.Path, args []decider.Arg) (*decider.Decision, error) {
	return &decider.Decision{BuildNeeded: s.needed}, nil
}

func runToDone(t *testing.T, ctx context.Context, b builder.Builder) builder.Status {
	t.Helper()
	for i := 0; i < 100; i++ {
		status, err := b.Step(ctx)
		require.NoError(t, err)
		if status.Done() {
			return status
		}
	}
	t.Fatal("builder never reached a terminal state")
	return builder.StatusFailed
}

func TestSequentialAdvancesChildrenInOrderUntilDone(t *testing.T) {
	ctx := context.Background()
	a := &fakeBuilder{stepsToDone: 1}
	b := &fakeBuilder{stepsToDone: 1}
	c := &fakeBuilder{stepsToDone: 1}

	seq := NewSequential("chain", nil, docpath.TargetPath{}, nil, nil, a, b, c)
	require.NoError(t, seq.Prepare(ctx))
	assert.Equal(t, 1, a.prepareN)
	assert.Equal(t, 0, b.prepareN)
	assert.Equal(t, 0, c.prepareN)

	status := runToDone(t, ctx, seq)
	assert.Equal(t, builder.StatusDone, status)
	assert.Equal(t, 1, b.prepareN)
	assert.Equal(t, 1, c.prepareN)
}

func TestSequentialShortCircuitsWhenDeciderSaysNoBuildNeeded(t *testing.T) {
	ctx := context.Background()
	a := &fakeBuilder{stepsToDone: 1}

	seq := NewSequential("chain", nil, docpath.TargetPath{}, nil, stubDecider{needed: false}, a)
	require.NoError(t, seq.Prepare(ctx))
	assert.Equal(t, builder.StatusDone, seq.Status())
	assert.Equal(t, 0, a.prepareN, "sub-builder must not be touched when the top-level decision says no build is needed")
}

func TestSequentialPropagatesChildFailure(t *testing.T) {
	ctx := context.Background()
	a := &fakeBuilder{fail: true}
	b := &fakeBuilder{stepsToDone: 1}

	seq := NewSequential("chain", nil, docpath.TargetPath{}, nil, nil, a, b)
	require.NoError(t, seq.Prepare(ctx))

	status, err := seq.Step(ctx)
	require.Error(t, err)
	assert.Equal(t, builder.StatusFailed, status)
	assert.Equal(t, 0, b.prepareN, "a later sub-builder is never prepared once an earlier one fails")
}

func TestParallelAggregatesWorstStatus(t *testing.T) {
	ctx := context.Background()
	ok := &fakeBuilder{stepsToDone: 1}
	bad := &fakeBuilder{fail: true}

	p := NewParallel("media", 0, ok, bad)
	require.NoError(t, p.Prepare(ctx))

	status, err := p.Step(ctx)
	require.Error(t, err)
	assert.Equal(t, builder.StatusFailed, status)
}

func TestParallelAllDoneReportsDone(t *testing.T) {
	ctx := context.Background()
	a := &fakeBuilder{stepsToDone: 1}
	b := &fakeBuilder{stepsToDone: 2}

	p := NewParallel("media", 0, a, b)
	require.NoError(t, p.Prepare(ctx))

	status, err := p.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, builder.StatusDone, status)
}

func TestParallelAddBuildResolvesViaRegistryAndBuildsFile(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	in, err := docpath.NewSourcePath(root, "figure.svg")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(in.Abs(), []byte("<svg/>"), 0o600))
	out, err := docpath.NewTargetPath(root, "html", "figure.svg")
	require.NoError(t, err)

	reg := registry.New()
	reg.Register("svg", "svg", "", 0, "", func(in docpath.Path, out docpath.TargetPath, cacheDir docpath.TargetPath, d decider.Decider) (builder.Builder, error) {
		return builder.NewCopy(in, out, d), nil
	})

	p := NewParallel("media", 0)
	built, err := p.AddBuild(ctx, "html", in, out, docpath.TargetPath{}, reg, decider.NewExistenceDecider())
	require.NoError(t, err)
	require.NotNil(t, built)

	require.NoError(t, p.Prepare(ctx))
	status := runToDone(t, ctx, p)
	assert.Equal(t, builder.StatusDone, status)

	data, err := os.ReadFile(out.Abs())
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
}

func TestParallelAddBuildRejectsDuplicateOutput(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	in, err := docpath.NewSourcePath(root, "figure.svg")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(in.Abs(), []byte("<svg/>"), 0o600))
	out, err := docpath.NewTargetPath(root, "html", "figure.svg")
	require.NoError(t, err)

	reg := registry.New()
	reg.Register("svg", "svg", "", 0, "", func(in docpath.Path, out docpath.TargetPath, cacheDir docpath.TargetPath, d decider.Decider) (builder.Builder, error) {
		return builder.NewCopy(in, out, d), nil
	})

	p := NewParallel("media", 0)
	_, err = p.AddBuild(ctx, "html", in, out, docpath.TargetPath{}, reg, decider.NewExistenceDecider())
	require.NoError(t, err)

	_, err = p.AddBuild(ctx, "html", in, out, docpath.TargetPath{}, reg, decider.NewExistenceDecider())
	require.Error(t, err)
}

func TestParallelAddBuildReturnsNoBuilderForUnknownExtension(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	in, err := docpath.NewSourcePath(root, "figure.unknown")
	require.NoError(t, err)

	reg := registry.New()
	p := NewParallel("media", 0)
	_, err = p.AddBuild(ctx, "html", in, docpath.TargetPath{}, docpath.TargetPath{}, reg, decider.NewExistenceDecider())
	require.Error(t, err)
}

func TestNewPdfToSvgPipelineWiresCropSvgScale(t *testing.T) {
	root := t.TempDir()
	in, err := docpath.NewSourcePath(root, "sample.pdf")
	require.NoError(t, err)
	cacheDir, err := docpath.NewTargetPath(root, "", "cache")
	require.NoError(t, err)
	out, err := docpath.NewTargetPath(root, "html", "sample.svg")
	require.NoError(t, err)

	pipeline := NewPdfToSvgPipeline(in, cacheDir, out, builder.UniformCrop(100), 2, nil)
	require.Len(t, pipeline.sub, 3)

	crop, ok := pipeline.sub[0].(*builder.Pdfcrop)
	require.True(t, ok)
	assert.Contains(t, crop.OutFilePath().String(), "sample_crop.pdf")

	toSvg, ok := pipeline.sub[1].(*builder.Pdf2Svg)
	require.True(t, ok)
	assert.Contains(t, toSvg.OutFilePath().String(), "sample_raw.svg")

	scale, ok := pipeline.sub[2].(*builder.ScaleSvg)
	require.True(t, ok)
	assert.Equal(t, out.Abs(), scale.OutFilePath().Abs())
}
