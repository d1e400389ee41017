package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"NewsPulse/internal/domain"
	"NewsPulse/internal/feed"
)

type fakeFeed struct {
	articles []domain.Article
	err      error
	gotReq   feed.Request
	calls    int
}

func (f *fakeFeed) Fetch(_ context.Context, req feed.Request) ([]domain.Article, error) {
	f.calls++
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

type fakeArticleStore struct {
	mu            sync.Mutex
	byFingerprint map[string]domain.Article

	window     []domain.Article
	windowFrom time.Time
	windowTo   time.Time
	windowMax  int

	existsErr      error
	insertErrs     map[string]error
	insertOverride error
}

func newFakeArticleStore() *fakeArticleStore {
	return &fakeArticleStore{
		byFingerprint: map[string]domain.Article{},
		insertErrs:    map[string]error{},
	}
}

func (f *fakeArticleStore) ExistsByFingerprint(_ context.Context, fingerprint string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.byFingerprint[fingerprint]
	return ok, nil
}

func (f *fakeArticleStore) Insert(_ context.Context, article domain.Article) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.insertErrs[article.Title]; err != nil {
		return err
	}
	if f.insertOverride != nil {
		return f.insertOverride
	}
	f.byFingerprint[article.Fingerprint] = article
	return nil
}

func (f *fakeArticleStore) FindWindow(_ context.Context, _ *uuid.UUID, from, to time.Time, limit int) ([]domain.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windowFrom = from
	f.windowTo = to
	f.windowMax = limit
	if limit > 0 && len(f.window) > limit {
		return f.window[:limit], nil
	}
	return f.window, nil
}

func (f *fakeArticleStore) stored() []domain.Article {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Article, 0, len(f.byFingerprint))
	for _, a := range f.byFingerprint {
		out = append(out, a)
	}
	return out
}

type fakeTopicStore struct {
	mu        sync.Mutex
	bySlug    map[string]domain.Topic
	upsertErr error
	listErr   error
	upserts   int
}

func newFakeTopicStore() *fakeTopicStore {
	return &fakeTopicStore{bySlug: map[string]domain.Topic{}}
}

func (f *fakeTopicStore) UpsertBySlug(_ context.Context, topic domain.Topic) (domain.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return domain.Topic{}, f.upsertErr
	}
	f.upserts++
	if existing, ok := f.bySlug[topic.Slug]; ok {
		existing.Name = topic.Name
		existing.DisplayOrder = topic.DisplayOrder
		f.bySlug[topic.Slug] = existing
		return existing, nil
	}
	topic.ID = uuid.New()
	f.bySlug[topic.Slug] = topic
	return topic, nil
}

func (f *fakeTopicStore) List(_ context.Context) ([]domain.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Topic, 0, len(f.bySlug))
	for _, t := range f.bySlug {
		out = append(out, t)
	}
	return out, nil
}

type fakeDigestStore struct {
	mu        sync.Mutex
	byKey     map[string]domain.Digest
	findErr   error
	insertErr error
	deleteErr error
	inserts   int
	deletes   int
}

func newFakeDigestStore() *fakeDigestStore {
	return &fakeDigestStore{byKey: map[string]domain.Digest{}}
}

func digestKey(kind domain.DigestKind, topicID *uuid.UUID, date time.Time) string {
	topic := "global"
	if topicID != nil {
		topic = topicID.String()
	}
	return fmt.Sprintf("%s|%s|%s", kind, topic, date.Format("2006-01-02"))
}

func (f *fakeDigestStore) FindByKey(_ context.Context, kind domain.DigestKind, topicID *uuid.UUID, date time.Time) (*domain.Digest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	if digest, ok := f.byKey[digestKey(kind, topicID, date)]; ok {
		copied := digest
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeDigestStore) Insert(_ context.Context, digest domain.Digest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	key := digestKey(digest.Kind, digest.TopicID, digest.Date)
	if _, ok := f.byKey[key]; ok {
		return fmt.Errorf("uniqueness violated for %s", key)
	}
	f.byKey[key] = digest
	f.inserts++
	return nil
}

func (f *fakeDigestStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for key, digest := range f.byKey {
		if digest.ID == id {
			delete(f.byKey, key)
			f.deletes++
			return nil
		}
	}
	return nil
}

func (f *fakeDigestStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byKey)
}

type fakeSummarizer struct {
	mu           sync.Mutex
	narrative    string
	narrativeErr error
	failLabels   map[string]error
	title        string
	titleErr     error
	calls        int
	titleCalls   int
	gotItems     []domain.DigestItem
	gotLabel     string
}

func (f *fakeSummarizer) Summarize(_ context.Context, items []domain.DigestItem, scopeLabel string, _ time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotItems = items
	f.gotLabel = scopeLabel
	if err := f.failLabels[scopeLabel]; err != nil {
		return "", err
	}
	if f.narrativeErr != nil {
		return "", f.narrativeErr
	}
	return f.narrative, nil
}

func (f *fakeSummarizer) TitleFor(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titleCalls++
	if f.titleErr != nil {
		return "", f.titleErr
	}
	return f.title, nil
}

type fakeIllustrator struct {
	mu    sync.Mutex
	url   string
	err   error
	calls int
}

func (f *fakeIllustrator) Illustrate(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeResolver struct {
	byTitle map[string]domain.TagResult
	calls   int
}

func (f *fakeResolver) Resolve(_ context.Context, title, _ string, _ bool) domain.TagResult {
	f.calls++
	if result, ok := f.byTitle[title]; ok {
		return result
	}
	return domain.TagResult{Provenance: domain.ProvenanceRule}
}
