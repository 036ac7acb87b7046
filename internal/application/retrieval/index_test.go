package retrieval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"portfolio-chat-api/internal/domain/entity"
	"portfolio-chat-api/internal/domain/service/servicetest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type staticSource []entity.Passage

func (s staticSource) Passages() []entity.Passage { return s }

func samplePassages() staticSource {
	return staticSource{
		{Kind: entity.PassageKindBio, Text: "BIO: I build things"},
		{Kind: entity.PassageKindProject, Text: "MY PROJECT: Portfolio Website | a portfolio project"},
		{Kind: entity.PassageKindContact, Text: "CONTACT: contact me on this portfolio"},
	}
}

func testOptions() IndexOptions {
	return IndexOptions{BuildTimeout: 5 * time.Second, BuildRetries: 0}
}

func TestEnsureReady_SingleFlight(t *testing.T) {
	release := make(chan struct{})
	emb := servicetest.NewKeywordEmbedder()
	emb.EmbedFunc = func(ctx context.Context, texts []string) ([][]float64, error) {
		<-release
		return servicetest.KeywordVectors(servicetest.DefaultVocab, texts), nil
	}
	idx := NewIndex(samplePassages(), emb, testOptions())

	const callers = 16
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- idx.EnsureReady(context.Background())
		}()
	}

	require.Eventually(t, func() bool { return idx.Status().State == StateBuilding }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, emb.Calls())
	assert.True(t, idx.IsReady())

	st := idx.Status()
	assert.Equal(t, StateReady, st.State)
	assert.Equal(t, 3, st.Passages)
	assert.Empty(t, st.LastError)

	// 就绪后不再调用 embedding
	require.NoError(t, idx.EnsureReady(context.Background()))
	assert.Equal(t, 1, emb.Calls())
}

func TestEnsureReady_SingleFlightFailure(t *testing.T) {
	upstream := errors.New("upstream down")
	release := make(chan struct{})
	emb := servicetest.NewKeywordEmbedder()
	emb.EmbedFunc = func(ctx context.Context, texts []string) ([][]float64, error) {
		<-release
		return nil, upstream
	}
	idx := NewIndex(samplePassages(), emb, testOptions())

	const callers = 16
	var started, done sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		started.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			started.Done()
			errs <- idx.EnsureReady(context.Background())
		}()
	}

	started.Wait()
	require.Eventually(t, func() bool { return emb.Calls() == 1 }, time.Second, time.Millisecond)
	// 留出时间让其余调用方加入同一次构建
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()
	close(errs)

	var first error
	for err := range errs {
		require.ErrorIs(t, err, upstream)
		if first == nil {
			first = err
		}
		assert.Same(t, first, err)
	}
	assert.Equal(t, 1, emb.Calls())
	assert.False(t, idx.IsReady())

	st := idx.Status()
	assert.Equal(t, StateAbsent, st.State)
	assert.Contains(t, st.LastError, "upstream down")
}

func TestEnsureReady_FailureResetsToAbsent(t *testing.T) {
	var mu sync.Mutex
	fail := true
	emb := servicetest.NewKeywordEmbedder()
	emb.EmbedFunc = func(ctx context.Context, texts []string) ([][]float64, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			fail = false
			return nil, errors.New("upstream 503")
		}
		return servicetest.KeywordVectors(servicetest.DefaultVocab, texts), nil
	}
	idx := NewIndex(samplePassages(), emb, testOptions())

	err := idx.EnsureReady(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream 503")
	assert.False(t, idx.IsReady())

	st := idx.Status()
	assert.Equal(t, StateAbsent, st.State)
	assert.Contains(t, st.LastError, "upstream 503")

	got, err := NewRetriever(idx).Retrieve(context.Background(), "portfolio", 3)
	assert.NoError(t, err)
	assert.Empty(t, got)

	// 下一次请求重新构建
	require.NoError(t, idx.EnsureReady(context.Background()))
	assert.Equal(t, 2, emb.Calls())
	assert.Equal(t, StateReady, idx.Status().State)
}

func TestEnsureReady_RetriesTransientFailure(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	emb := servicetest.NewKeywordEmbedder()
	emb.EmbedFunc = func(ctx context.Context, texts []string) ([][]float64, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return nil, errors.New("transient")
		}
		return servicetest.KeywordVectors(servicetest.DefaultVocab, texts), nil
	}
	idx := NewIndex(samplePassages(), emb, IndexOptions{
		BuildTimeout:  5 * time.Second,
		BuildRetries:  1,
		RetryInterval: time.Millisecond,
	})

	require.NoError(t, idx.EnsureReady(context.Background()))
	assert.Equal(t, 2, emb.Calls())
}

func TestEnsureReady_BuildTimeout(t *testing.T) {
	emb := servicetest.NewKeywordEmbedder()
	emb.EmbedFunc = func(ctx context.Context, texts []string) ([][]float64, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	idx := NewIndex(samplePassages(), emb, IndexOptions{BuildTimeout: 50 * time.Millisecond})

	err := idx.EnsureReady(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, idx.IsReady())
	assert.Equal(t, StateAbsent, idx.Status().State)
}

func TestEnsureReady_CallerCancelDoesNotAbortBuild(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	emb := servicetest.NewKeywordEmbedder()
	emb.EmbedFunc = func(ctx context.Context, texts []string) ([][]float64, error) {
		once.Do(func() { close(started) })
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return servicetest.KeywordVectors(servicetest.DefaultVocab, texts), nil
	}
	idx := NewIndex(samplePassages(), emb, testOptions())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- idx.EnsureReady(ctx) }()

	<-started
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(release)
	require.NoError(t, idx.EnsureReady(context.Background()))
	assert.Equal(t, 1, emb.Calls())
	assert.True(t, idx.IsReady())
}

func TestEnsureReady_EmptyCorpus(t *testing.T) {
	emb := servicetest.NewKeywordEmbedder()
	idx := NewIndex(staticSource(nil), emb, testOptions())

	require.NoError(t, idx.EnsureReady(context.Background()))
	assert.True(t, idx.IsReady())
	assert.Equal(t, 0, emb.Calls())

	got, err := NewRetriever(idx).Retrieve(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 0, emb.Calls())
}

func TestEnsureReady_Unconfigured(t *testing.T) {
	emb := &servicetest.Embedder{Unconfigured: true}
	idx := NewIndex(samplePassages(), emb, testOptions())

	assert.ErrorIs(t, idx.EnsureReady(context.Background()), ErrEmbedderUnavailable)
	assert.Equal(t, 0, emb.Calls())
	assert.Equal(t, StateAbsent, idx.Status().State)
}

func TestEnsureReady_VectorCountMismatch(t *testing.T) {
	emb := servicetest.NewKeywordEmbedder()
	emb.EmbedFunc = func(ctx context.Context, texts []string) ([][]float64, error) {
		return [][]float64{{1, 0}}, nil
	}
	idx := NewIndex(samplePassages(), emb, IndexOptions{BuildTimeout: time.Second, BuildRetries: 3})

	assert.ErrorIs(t, idx.EnsureReady(context.Background()), ErrVectorCountMismatch)
	assert.False(t, idx.IsReady())
	// 数量不一致不重试
	assert.Equal(t, 1, emb.Calls())
}

func TestEnsureReady_RebuildIsDeterministic(t *testing.T) {
	build := func() *Snapshot {
		idx := NewIndex(samplePassages(), servicetest.NewKeywordEmbedder(), testOptions())
		require.NoError(t, idx.EnsureReady(context.Background()))
		return idx.Snapshot()
	}

	a, b := build(), build()
	assert.Equal(t, a.Passages, b.Passages)
	assert.Equal(t, a.Vectors, b.Vectors)
}
