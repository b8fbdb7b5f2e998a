package service

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memDB is an in-memory stand-in for postgres. Transactions are serialized
// and roll back on error, which is enough to exercise the service-level
// invariants without a database.
type memDB struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users       map[string]models.User
	categories  map[int64]models.Category
	genres      map[int64]models.Genre
	titles      map[int64]models.Title
	titleGenres map[int64][]int64
	reviews     map[int64]models.Review
	comments    map[int64]models.Comment
	nextID      int64

	// hideReviews makes FindByAuthorAndTitle miss, so the unique index is
	// what catches a duplicate.
	hideReviews bool
	// setRatingErr fails every SetRating call.
	setRatingErr error
	// ratingsErr fails every Ratings read.
	ratingsErr error
	// beforeWrite runs once at the start of the next user or comment update,
	// standing in for a concurrent delete that lands between read and write.
	beforeWrite func(d *memDB)
}

type memStore struct {
	db   *memDB
	inTx bool
}

func newMemStore() *memStore {
	return &memStore{db: &memDB{
		users:       map[string]models.User{},
		categories:  map[int64]models.Category{},
		genres:      map[int64]models.Genre{},
		titles:      map[int64]models.Title{},
		titleGenres: map[int64][]int64{},
		reviews:     map[int64]models.Review{},
		comments:    map[int64]models.Comment{},
	}}
}

type memSnapshot struct {
	users       map[string]models.User
	categories  map[int64]models.Category
	genres      map[int64]models.Genre
	titles      map[int64]models.Title
	titleGenres map[int64][]int64
	reviews     map[int64]models.Review
	comments    map[int64]models.Comment
	nextID      int64
}

func (d *memDB) snapshot() memSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	tg := make(map[int64][]int64, len(d.titleGenres))
	for k, v := range d.titleGenres {
		tg[k] = slices.Clone(v)
	}
	return memSnapshot{
		users:       maps.Clone(d.users),
		categories:  maps.Clone(d.categories),
		genres:      maps.Clone(d.genres),
		titles:      maps.Clone(d.titles),
		titleGenres: tg,
		reviews:     maps.Clone(d.reviews),
		comments:    maps.Clone(d.comments),
		nextID:      d.nextID,
	}
}

func (d *memDB) restore(s memSnapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users, d.categories, d.genres = s.users, s.categories, s.genres
	d.titles, d.titleGenres = s.titles, s.titleGenres
	d.reviews, d.comments, d.nextID = s.reviews, s.comments, s.nextID
}

func (d *memDB) runBeforeWrite() {
	if hook := d.beforeWrite; hook != nil {
		d.beforeWrite = nil
		hook(d)
	}
}

func (d *memDB) id() int64 {
	d.nextID++
	return d.nextID
}

func (s *memStore) Transaction(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.db.txMu.Lock()
	defer s.db.txMu.Unlock()

	snap := s.db.snapshot()
	if err := fn(&memStore{db: s.db, inTx: true}); err != nil {
		s.db.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) Users() repository.UserRepository          { return memUsers{s.db} }
func (s *memStore) Categories() repository.CategoryRepository { return memCategories{s.db} }
func (s *memStore) Genres() repository.GenreRepository        { return memGenres{s.db} }
func (s *memStore) Titles() repository.TitleRepository        { return memTitles{s.db} }
func (s *memStore) Reviews() repository.ReviewRepository      { return memReviews{s.db} }
func (s *memStore) Comments() repository.CommentRepository    { return memComments{s.db} }

func page[T any](items []T, page, pageSize int) []T {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	return items[start:min(start+pageSize, len(items))]
}

// users

type memUsers struct{ db *memDB }

func (r memUsers) Create(ctx context.Context, user *models.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	r.db.users[user.ID] = *user
	return nil
}

func (r memUsers) Update(ctx context.Context, user *models.User) error {
	r.db.runBeforeWrite()
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for id, u := range r.db.users {
		if id != user.ID && (u.Username == user.Username || u.Email == user.Email) {
			return repository.ErrDuplicateKey
		}
	}
	r.db.users[user.ID] = *user
	return nil
}

func (r memUsers) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.db.users, id)
	for rid, rv := range r.db.reviews {
		if rv.AuthorID == id {
			delete(r.db.reviews, rid)
		}
	}
	for cid, c := range r.db.comments {
		if c.AuthorID == id {
			delete(r.db.comments, cid)
		}
	}
	return nil
}

func (r memUsers) find(match func(models.User) bool) (*models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.ID == id })
}

func (r memUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r memUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r memUsers) List(ctx context.Context, search string, p, pageSize int) ([]models.User, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.User
	for _, u := range r.db.users {
		if search == "" || strings.Contains(strings.ToLower(u.Username), strings.ToLower(search)) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return page(out, p, pageSize), int64(len(out)), nil
}

// categories

type memCategories struct{ db *memDB }

func (r memCategories) List(ctx context.Context, search string, p, pageSize int) ([]models.Category, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Category
	for _, c := range r.db.categories {
		if search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, p, pageSize), int64(len(out)), nil
}

func (r memCategories) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, c := range r.db.categories {
		if c.Slug == slug {
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memCategories) Create(ctx context.Context, c *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.categories {
		if existing.Slug == c.Slug {
			return repository.ErrDuplicateKey
		}
	}
	c.ID = r.db.id()
	r.db.categories[c.ID] = *c
	return nil
}

func (r memCategories) DeleteBySlug(ctx context.Context, slug string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, c := range r.db.categories {
		if c.Slug == slug {
			delete(r.db.categories, id)
			for tid, t := range r.db.titles {
				if t.CategoryID != nil && *t.CategoryID == id {
					t.CategoryID = nil
					r.db.titles[tid] = t
				}
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// genres

type memGenres struct{ db *memDB }

func (r memGenres) List(ctx context.Context, search string, p, pageSize int) ([]models.Genre, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Genre
	for _, g := range r.db.genres {
		if search == "" || strings.Contains(strings.ToLower(g.Name), strings.ToLower(search)) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, p, pageSize), int64(len(out)), nil
}

func (r memGenres) FindBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, g := range r.db.genres {
		if g.Slug == slug {
			return &g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memGenres) FindBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Genre
	for _, g := range r.db.genres {
		if slices.Contains(slugs, g.Slug) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r memGenres) Create(ctx context.Context, g *models.Genre) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.genres {
		if existing.Slug == g.Slug {
			return repository.ErrDuplicateKey
		}
	}
	g.ID = r.db.id()
	r.db.genres[g.ID] = *g
	return nil
}

func (r memGenres) DeleteBySlug(ctx context.Context, slug string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, g := range r.db.genres {
		if g.Slug == slug {
			delete(r.db.genres, id)
			for tid, ids := range r.db.titleGenres {
				r.db.titleGenres[tid] = slices.DeleteFunc(ids, func(x int64) bool { return x == id })
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// titles

type memTitles struct{ db *memDB }

// hydrate fills the associations; caller holds mu.
func (r memTitles) hydrate(t models.Title) models.Title {
	if t.CategoryID != nil {
		if c, ok := r.db.categories[*t.CategoryID]; ok {
			t.Category = &c
		}
	} else {
		t.Category = nil
	}
	t.Genres = nil
	for _, gid := range r.db.titleGenres[t.ID] {
		if g, ok := r.db.genres[gid]; ok {
			t.Genres = append(t.Genres, g)
		}
	}
	if t.Rating != nil {
		v := *t.Rating
		t.Rating = &v
	}
	return t
}

func (r memTitles) List(ctx context.Context, f repository.TitleFilter, p, pageSize int) ([]models.Title, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Title
	for _, t := range r.db.titles {
		t = r.hydrate(t)
		if f.Name != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Year != nil && t.Year != *f.Year {
			continue
		}
		if f.Category != "" && (t.Category == nil || t.Category.Slug != f.Category) {
			continue
		}
		if f.Genre != "" && !slices.ContainsFunc(t.Genres, func(g models.Genre) bool { return g.Slug == f.Genre }) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, p, pageSize), int64(len(out)), nil
}

func (r memTitles) FindByID(ctx context.Context, id int64) (*models.Title, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.titles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	t = r.hydrate(t)
	return &t, nil
}

// LockByID needs no lock here since memStore transactions are serialized.
func (r memTitles) LockByID(ctx context.Context, id int64) (*models.Title, error) {
	return r.FindByID(ctx, id)
}

func (r memTitles) Create(ctx context.Context, t *models.Title) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t.ID = r.db.id()
	t.Rating = nil
	stored := *t
	stored.Category, stored.Genres = nil, nil
	r.db.titles[t.ID] = stored
	return nil
}

func (r memTitles) Update(ctx context.Context, t *models.Title) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.titles[t.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *t
	stored.Rating = existing.Rating
	stored.Category, stored.Genres = nil, nil
	r.db.titles[t.ID] = stored
	return nil
}

func (r memTitles) ReplaceGenres(ctx context.Context, titleID int64, genreIDs []int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.titleGenres[titleID] = slices.Clone(genreIDs)
	return nil
}

func (r memTitles) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.titles[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.db.titles, id)
	delete(r.db.titleGenres, id)
	for rid, rv := range r.db.reviews {
		if rv.TitleID == id {
			delete(r.db.reviews, rid)
			for cid, c := range r.db.comments {
				if c.ReviewID == rid {
					delete(r.db.comments, cid)
				}
			}
		}
	}
	return nil
}

func (r memTitles) SetRating(ctx context.Context, id int64, rating *float64) error {
	if r.db.setRatingErr != nil {
		return r.db.setRatingErr
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.titles[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Rating = rating
	r.db.titles[id] = t
	return nil
}

func (r memTitles) Ratings(ctx context.Context, ids []int64) (map[int64]*float64, error) {
	if r.db.ratingsErr != nil {
		return nil, r.db.ratingsErr
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make(map[int64]*float64, len(ids))
	for _, id := range ids {
		if t, ok := r.db.titles[id]; ok {
			out[id] = t.Rating
		}
	}
	return out, nil
}

// reviews

type memReviews struct{ db *memDB }

func (r memReviews) withAuthor(rv models.Review) models.Review {
	rv.Author = r.db.users[rv.AuthorID]
	return rv
}

func (r memReviews) Create(ctx context.Context, review *models.Review) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.reviews {
		if existing.AuthorID == review.AuthorID && existing.TitleID == review.TitleID {
			return errors.Join(repository.ErrDuplicateKey, errors.New("idx_reviews_author_title"))
		}
	}
	review.ID = r.db.id()
	r.db.reviews[review.ID] = *review
	return nil
}

func (r memReviews) Update(ctx context.Context, review *models.Review) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.reviews[review.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	existing.Text = review.Text
	existing.Score = review.Score
	r.db.reviews[review.ID] = existing
	return nil
}

func (r memReviews) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.reviews[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.db.reviews, id)
	for cid, c := range r.db.comments {
		if c.ReviewID == id {
			delete(r.db.comments, cid)
		}
	}
	return nil
}

func (r memReviews) FindByID(ctx context.Context, id int64) (*models.Review, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	rv, ok := r.db.reviews[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	rv = r.withAuthor(rv)
	return &rv, nil
}

func (r memReviews) FindByAuthorAndTitle(ctx context.Context, authorID string, titleID int64) (*models.Review, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.hideReviews {
		return nil, gorm.ErrRecordNotFound
	}
	for _, rv := range r.db.reviews {
		if rv.AuthorID == authorID && rv.TitleID == titleID {
			rv = r.withAuthor(rv)
			return &rv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memReviews) ListByTitle(ctx context.Context, titleID int64, p, pageSize int) ([]models.Review, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Review
	for _, rv := range r.db.reviews {
		if rv.TitleID == titleID {
			out = append(out, r.withAuthor(rv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PubDate.After(out[j].PubDate) })
	return page(out, p, pageSize), int64(len(out)), nil
}

func (r memReviews) AverageScore(ctx context.Context, titleID int64) (*float64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var sum, n int
	for _, rv := range r.db.reviews {
		if rv.TitleID == titleID {
			sum += rv.Score
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := float64(sum) / float64(n)
	return &avg, nil
}

func (r memReviews) TitleIDsByAuthor(ctx context.Context, authorID string) ([]int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var ids []int64
	for _, rv := range r.db.reviews {
		if rv.AuthorID == authorID {
			ids = append(ids, rv.TitleID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// comments

type memComments struct{ db *memDB }

func (r memComments) Create(ctx context.Context, comment *models.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.reviews[comment.ReviewID]; !ok {
		return errors.New("violates foreign key constraint")
	}
	comment.ID = r.db.id()
	stored := *comment
	stored.Author = models.User{}
	r.db.comments[comment.ID] = stored
	return nil
}

func (r memComments) Update(ctx context.Context, comment *models.Comment) error {
	r.db.runBeforeWrite()
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.comments[comment.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	existing.Text = comment.Text
	r.db.comments[comment.ID] = existing
	return nil
}

func (r memComments) Delete(ctx context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.comments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.db.comments, id)
	return nil
}

func (r memComments) FindByID(ctx context.Context, id int64) (*models.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c.Author = r.db.users[c.AuthorID]
	return &c, nil
}

func (r memComments) ListByReview(ctx context.Context, reviewID int64, p, pageSize int) ([]models.Comment, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.Comment
	for _, c := range r.db.comments {
		if c.ReviewID == reviewID {
			c.Author = r.db.users[c.AuthorID]
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, p, pageSize), int64(len(out)), nil
}
