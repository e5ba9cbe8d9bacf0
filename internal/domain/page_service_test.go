package domain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Vovarama1992/qrpage/internal/domain/stations"
	"github.com/Vovarama1992/qrpage/internal/infra"
	"github.com/Vovarama1992/qrpage/internal/models"
	"github.com/Vovarama1992/qrpage/internal/observability"
	"github.com/Vovarama1992/qrpage/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory PageRepository.
type memRepo struct {
	mu     sync.Mutex
	pages  map[string]models.Page
	seq    int
	failOn string
}

func newMemRepo() *memRepo {
	return &memRepo{pages: make(map[string]models.Page)}
}

func (r *memRepo) fail(op string) error {
	if r.failOn == op {
		return fmt.Errorf("%s: %w", op, models.ErrStorageUnavailable)
	}
	return nil
}

func (r *memRepo) FindOrCreateByOwner(_ context.Context, ownerID int64) (*models.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("find"); err != nil {
		return nil, err
	}

	var found *models.Page
	for _, p := range r.pages {
		if p.OwnerID == ownerID && (found == nil || p.CreatedAt.Before(found.CreatedAt)) {
			cp := p
			found = &cp
		}
	}
	if found != nil {
		return found, nil
	}

	r.seq++
	p := models.Page{
		ID:        fmt.Sprintf("pg%08d", r.seq),
		OwnerID:   ownerID,
		CreatedAt: time.Unix(int64(r.seq), 0),
	}
	r.pages[p.ID] = p
	return &p, nil
}

func (r *memRepo) Get(_ context.Context, id string) (*models.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("get"); err != nil {
		return nil, err
	}
	p, ok := r.pages[id]
	if !ok {
		return nil, models.ErrPageNotFound
	}
	return &p, nil
}

func (r *memRepo) SetField(_ context.Context, id string, field models.Field, value *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := field.Column(); err != nil {
		return err
	}
	if err := r.fail("set"); err != nil {
		return err
	}
	p, ok := r.pages[id]
	if !ok {
		return models.ErrPageNotFound
	}
	setFieldValue(&p, field, value)
	r.pages[id] = p
	return nil
}

func (r *memRepo) ClearContent(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("clear"); err != nil {
		return err
	}
	p, ok := r.pages[id]
	if !ok {
		return models.ErrPageNotFound
	}
	p.Audio, p.Image, p.Text = nil, nil, nil
	r.pages[id] = p
	return nil
}

type resolverFunc func(ctx context.Context, fileID string) (string, error)

func (f resolverFunc) ResolveFileURL(ctx context.Context, fileID string) (string, error) {
	return f(ctx, fileID)
}

type serviceFixture struct {
	svc   *PageService
	repo  *memRepo
	media *infra.FilesystemMediaStore
}

// newFixture serves every file id as its own body; ids starting with
// "missing" 404.
func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/")
		if strings.HasPrefix(id, "missing") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("blob:" + id))
	}))
	t.Cleanup(srv.Close)

	media, err := infra.NewFilesystemMediaStore(t.TempDir())
	require.NoError(t, err)

	log := observability.NopLogger()
	repo := newMemRepo()
	s1 := stations.NewS1ResolveFile(resolverFunc(func(_ context.Context, fileID string) (string, error) {
		return srv.URL + "/" + fileID, nil
	}), log)
	s2 := stations.NewS2Download(time.Second, 1<<20, log)

	svc := NewPageService(repo, media, s1, s2, nil, log)
	var n atomic.Int64
	svc.newSuffix = func() string { return fmt.Sprintf("s%d", n.Add(1)) }

	return &serviceFixture{
		svc:   svc,
		repo:  repo,
		media: media,
	}
}

func (f *serviceFixture) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(f.media.Dir())
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFindOrCreateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.FindOrCreate(ctx, 42)
	require.NoError(t, err)
	b, err := f.svc.FindOrCreate(ctx, 42)
	require.NoError(t, err)
	c, err := f.svc.FindOrCreate(ctx, 43)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.False(t, b.HasContent())
}

func TestViewUnknownPageIsEmpty(t *testing.T) {
	f := newFixture(t)

	v, err := f.svc.View(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", v.PageID)
	assert.False(t, v.HasContent)
	assert.Empty(t, v.AudioURL)
	assert.Empty(t, v.ImageURL)
	assert.Empty(t, v.Text)
	assert.Equal(t, models.DefaultTitle, v.Title)
}

func TestViewStorageFailurePropagates(t *testing.T) {
	f := newFixture(t)
	f.repo.failOn = "get"

	_, err := f.svc.View(context.Background(), "abc123")
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)
}

func TestNewPageViewBuildsMediaURLs(t *testing.T) {
	page := &models.Page{
		ID:    "abc123",
		Audio: models.StringPtr("abc123_audio.mp3"),
		Text:  models.StringPtr("hello"),
	}

	v := NewPageView(page.ID, page)
	assert.True(t, v.HasContent)
	assert.Equal(t, "/media/abc123_audio.mp3", v.AudioURL)
	assert.Empty(t, v.ImageURL)
	assert.Equal(t, "hello", v.Text)
	assert.Equal(t, models.DefaultTitle, v.Title)

	v = NewPageView(page.ID, &models.Page{ID: "abc123", Title: models.StringPtr("Mine")})
	assert.False(t, v.HasContent)
	assert.Equal(t, "Mine", v.Title)
}

func TestSetTextRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	text := "  hello <b>world</b>\nline two "
	page, err := f.svc.SetText(ctx, 7, text)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, page.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Text)
	assert.Equal(t, text, *got.Text)

	ev := <-f.svc.Events()
	assert.Equal(t, ports.PageEvent{PageID: page.ID, Kind: "updated"}, ev)
}

func TestSetTextRejectsBlank(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SetText(context.Background(), 7, " \n\t")
	assert.ErrorIs(t, err, models.ErrEmptyInput)

	_, err = f.svc.SetTitle(context.Background(), 7, "")
	assert.ErrorIs(t, err, models.ErrEmptyInput)
}

func TestSetTitleTrims(t *testing.T) {
	f := newFixture(t)

	page, err := f.svc.SetTitle(context.Background(), 7, "  My page ")
	require.NoError(t, err)
	assert.Equal(t, "My page", page.DisplayTitle())
	assert.False(t, page.HasContent())
}

func TestAttachAudioStoresFileAndReference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.svc.AttachAudio(ctx, 7, "file-1", ports.AudioKindFile)
	require.NoError(t, err)
	require.NotNil(t, page.Audio)
	assert.Equal(t, page.ID+"_audio_s1.mp3", *page.Audio)
	assert.True(t, f.media.Exists(*page.Audio))

	v, err := f.svc.View(ctx, page.ID)
	require.NoError(t, err)
	assert.True(t, v.HasContent)
	assert.Equal(t, "/media/"+page.ID+"_audio_s1.mp3", v.AudioURL)
}

func TestAttachVoiceReplacesPreviousAudio(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.AttachAudio(ctx, 7, "file-1", ports.AudioKindFile)
	require.NoError(t, err)
	oldName := *first.Audio

	second, err := f.svc.AttachAudio(ctx, 7, "voice-1", ports.AudioKindVoice)
	require.NoError(t, err)
	assert.Equal(t, first.ID+"_audio_s2.ogg", *second.Audio)

	assert.False(t, f.media.Exists(oldName))
	assert.True(t, f.media.Exists(*second.Audio))
}

func TestReplaceImageGetsFreshName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.AttachImage(ctx, 7, "photo-old")
	require.NoError(t, err)
	second, err := f.svc.AttachImage(ctx, 7, "photo-new")
	require.NoError(t, err)

	assert.NotEqual(t, *first.Image, *second.Image)
	assert.Equal(t, []string{*second.Image}, f.files(t))

	got, err := os.ReadFile(filepath.Join(f.media.Dir(), *second.Image))
	require.NoError(t, err)
	assert.Equal(t, "blob:photo-new", string(got))
}

func TestAttachFailedDownloadLeavesPageUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.svc.AttachImage(ctx, 7, "photo-1")
	require.NoError(t, err)

	_, err = f.svc.AttachImage(ctx, 7, "missing-photo")
	require.ErrorIs(t, err, models.ErrUpstreamFetch)

	after, err := f.svc.Get(ctx, before.ID)
	require.NoError(t, err)
	assert.Equal(t, *before.Image, *after.Image)
	assert.True(t, f.media.Exists(*after.Image))
}

func TestAttachStorageFailureRemovesNewBlob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.svc.FindOrCreate(ctx, 7)
	require.NoError(t, err)

	f.repo.failOn = "set"
	_, err = f.svc.AttachAudio(ctx, 7, "voice-1", ports.AudioKindVoice)
	require.ErrorIs(t, err, models.ErrStorageUnavailable)

	assert.Empty(t, f.files(t))
	got, err := f.svc.Get(ctx, page.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Audio)
}

func TestAttachStorageFailureKeepsPreviousBlob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.svc.AttachImage(ctx, 7, "photo-old")
	require.NoError(t, err)

	f.repo.failOn = "set"
	_, err = f.svc.AttachImage(ctx, 7, "photo-new")
	require.ErrorIs(t, err, models.ErrStorageUnavailable)

	after, err := f.svc.Get(ctx, before.ID)
	require.NoError(t, err)
	require.NotNil(t, after.Image)
	assert.Equal(t, *before.Image, *after.Image)
	assert.Equal(t, []string{*before.Image}, f.files(t))

	got, err := os.ReadFile(filepath.Join(f.media.Dir(), *after.Image))
	require.NoError(t, err)
	assert.Equal(t, "blob:photo-old", string(got))
}

func TestClearRemovesBlobsAndKeepsIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.svc.AttachAudio(ctx, 7, "file-1", ports.AudioKindFile)
	require.NoError(t, err)
	page, err = f.svc.AttachImage(ctx, 7, "photo-1")
	require.NoError(t, err)
	_, err = f.svc.SetText(ctx, 7, "hello")
	require.NoError(t, err)
	_, err = f.svc.SetTitle(ctx, 7, "Mine")
	require.NoError(t, err)

	cleared, err := f.svc.Clear(ctx, 7)
	require.NoError(t, err)
	assert.False(t, cleared.HasContent())

	got, err := f.svc.Get(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, page.ID, got.ID)
	assert.Equal(t, int64(7), got.OwnerID)
	assert.Nil(t, got.Audio)
	assert.Nil(t, got.Image)
	assert.Nil(t, got.Text)
	assert.Equal(t, "Mine", got.DisplayTitle())

	assert.False(t, f.media.Exists(*page.Audio))
	assert.False(t, f.media.Exists(*page.Image))

	again, err := f.svc.FindOrCreate(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, page.ID, again.ID)
}

func TestClearStorageFailureReported(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SetText(ctx, 7, "hello")
	require.NoError(t, err)

	f.repo.failOn = "clear"
	_, err = f.svc.Clear(ctx, 7)
	assert.True(t, errors.Is(err, models.ErrStorageUnavailable))

	f.repo.failOn = ""
	page, err := f.svc.FindOrCreate(ctx, 7)
	require.NoError(t, err)
	assert.True(t, page.HasContent())
}

func TestConcurrentFieldUpdatesBothPersist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.svc.FindOrCreate(ctx, 7)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := f.svc.SetText(ctx, 7, "hello")
		assert.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := f.svc.AttachImage(ctx, 7, "photo-1")
		assert.NoError(t, err)
	}()
	wg.Wait()

	got, err := f.svc.Get(ctx, page.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Text)
	require.NotNil(t, got.Image)
	assert.Equal(t, "hello", *got.Text)
	assert.Regexp(t, `^`+page.ID+`_image_s\d+\.jpg$`, *got.Image)
}

func TestEventsDropWhenFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < cap(f.svc.events)+5; i++ {
		_, err := f.svc.SetText(ctx, 7, "hello")
		require.NoError(t, err)
	}
	assert.Len(t, f.svc.events, cap(f.svc.events))
}
