package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	results map[string][]Chunk // keyed by last embedded query
	last    *string
	limits  []int
	err     error
}

func (s *stubRepo) InsertChunk(_ context.Context, _ *Chunk, _ []float32) (int64, error) {
	return 0, nil
}

func (s *stubRepo) SearchSimilar(_ context.Context, _ []float32, limit int) ([]Chunk, error) {
	s.limits = append(s.limits, limit)
	if s.err != nil {
		return nil, s.err
	}
	return s.results[*s.last], nil
}

type stubEmbedder struct {
	last *string
	err  error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	*s.last = text
	return []float32{1, 0, 0}, nil
}

func newStubRetriever(results map[string][]Chunk) (*Retriever, *stubRepo) {
	var last string
	repo := &stubRepo{results: results, last: &last}
	return NewRetriever(repo, &stubEmbedder{last: &last}), repo
}

func TestRetrieve(t *testing.T) {
	want := []Chunk{{ID: 1, Content: "warranty text"}}
	r, repo := newStubRetriever(map[string][]Chunk{"warranty deadlines": want})

	got, err := r.Retrieve(context.Background(), "  warranty deadlines  ", 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, []int{3}, repo.limits)
}

func TestRetrieve_EmptyQuery(t *testing.T) {
	r, _ := newStubRetriever(nil)

	_, err := r.Retrieve(context.Background(), "   ", 3)
	assert.Error(t, err)
}

func TestRetrieve_DefaultsTopK(t *testing.T) {
	r, repo := newStubRetriever(map[string][]Chunk{"q": nil})

	_, err := r.Retrieve(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Equal(t, []int{DefaultTopK}, repo.limits)
}

func TestRetrieve_EmbedError(t *testing.T) {
	var last string
	r := NewRetriever(&stubRepo{last: &last}, &stubEmbedder{last: &last, err: errors.New("embed down")})

	_, err := r.Retrieve(context.Background(), "q", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed query")
}

func TestRetrieveMany_DeduplicatesByContent(t *testing.T) {
	shared := Chunk{ID: 1, Content: "the 72 hour rule"}
	r, _ := newStubRetriever(map[string][]Chunk{
		"first":  {shared, {ID: 2, Content: "attachments required"}},
		"second": {{ID: 3, Content: "the 72 hour rule"}, {ID: 4, Content: "delivery windows"}},
	})

	got, err := r.RetrieveMany(context.Background(), []string{"first", "second"}, 2)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "the 72 hour rule", got[0].Content)
	assert.Equal(t, "attachments required", got[1].Content)
	assert.Equal(t, "delivery windows", got[2].Content)
}

func TestRetrieveMany_PropagatesErrors(t *testing.T) {
	var last string
	repo := &stubRepo{last: &last, err: errors.New("db down")}
	r := NewRetriever(repo, &stubEmbedder{last: &last})

	_, err := r.RetrieveMany(context.Background(), []string{"a", "b"}, 2)
	assert.Error(t, err)
}
