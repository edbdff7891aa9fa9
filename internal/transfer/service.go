package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobmatch-backend/internal/graph"
	"jobmatch-backend/internal/queue"
	"jobmatch-backend/internal/shared/cache"
	"jobmatch-backend/internal/shared/metrics"
	"jobmatch-backend/internal/shared/storage/object"
	"jobmatch-backend/internal/shared/telemetry"
)

const (
	skillCatalogKey        = "skills:catalog"
	skillCatalogVersionKey = "skills:catalog:version"
)

// skillCatalog is the cached unfiltered skill list. Version is the catalog
// version read before the list was loaded; an entry whose version is no
// longer current may predate a write and is ignored.
type skillCatalog struct {
	Version int64         `json:"version"`
	Skills  []graph.Skill `json:"skills"`
}

// Service converts write payloads into entity graph mutations and builds
// the expanded read views.
type Service struct {
	Store graph.Store
	Files object.ObjectStore
	// Queue receives engine requests after commit. Nil disables publishing.
	Queue         queue.Client
	Cache         cache.Cache
	SkillCacheTTL time.Duration
}

type requestIDKey struct{}

// WithRequestID tags ctx so engine messages carry the originating request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id set by WithRequestID, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (s *Service) read(ctx context.Context, fn func(tx graph.Tx) error) error {
	return s.Store.Do(ctx, fn)
}

// write runs a mutating unit of work and records rollbacks.
func (s *Service) write(ctx context.Context, op string, fn func(tx graph.Tx) error) error {
	err := s.Store.Do(ctx, fn)
	if err != nil {
		metrics.IncRollback()
		telemetry.Warn("graph.tx.rollback", map[string]any{
			"op":         op,
			"request_id": RequestIDFromContext(ctx),
			"error":      err,
		})
	}
	return err
}

func (s *Service) cache() cache.Cache {
	if s.Cache == nil {
		return cache.Nop{}
	}
	return s.Cache
}

// publish sends an engine request. Failures are logged and never undo the
// committed write.
func (s *Service) publish(ctx context.Context, msg queue.Message) {
	if s.Queue == nil {
		return
	}
	msg.Version = queue.MessageVersion
	msg.RequestID = RequestIDFromContext(ctx)
	msg.EnqueuedAt = time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.Queue.Send(ctx, msg); err != nil {
		metrics.IncPublishFailed()
		telemetry.Error("engine.publish_failed", map[string]any{
			"kind":       string(msg.Kind),
			"resume_id":  msg.ResumeID,
			"request_id": msg.RequestID,
			"error":      err,
		})
	}
}

func (s *Service) deleteFile(ctx context.Context, key string) {
	if key == "" || s.Files == nil {
		return
	}
	if err := s.Files.Delete(context.WithoutCancel(ctx), key); err != nil && !errors.Is(err, object.ErrNotFound) {
		telemetry.Warn("resume.file_cleanup_failed", map[string]any{"file_key": key, "error": err})
	}
}

// linkSkills replaces owner's skill links with the ids that exist.
// Unknown ids are dropped.
func linkSkills(ctx context.Context, tx graph.Tx, links graph.AssociationRepo, ownerID int64, ids []int64) error {
	skills, err := tx.Skills().Resolve(ctx, ids)
	if err != nil {
		return err
	}
	resolved := make([]int64, len(skills))
	for i, sk := range skills {
		resolved[i] = sk.ID
	}
	return links.Set(ctx, ownerID, resolved)
}

func nestedError(list string, index int, err error) error {
	var verr *graph.ValidationError
	if errors.As(err, &verr) {
		return verr.Prefixed(fmt.Sprintf("%s[%d]", list, index))
	}
	return err
}

func observeCreate(kind string, start time.Time) {
	metrics.IncCreated(kind)
	metrics.ObserveCreateDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
}

// --- skills ---

func (s *Service) CreateSkill(ctx context.Context, in SkillPayload) (graph.Skill, error) {
	start := time.Now()
	skill := in.toEntity()
	err := s.write(ctx, "skill.create", func(tx graph.Tx) error {
		return tx.Skills().Create(ctx, &skill)
	})
	if err != nil {
		return graph.Skill{}, err
	}
	s.invalidateSkills(ctx)
	observeCreate("skill", start)
	return skill, nil
}

func (s *Service) UpdateSkill(ctx context.Context, id int64, in SkillUpdate) (graph.Skill, error) {
	var skill graph.Skill
	err := s.write(ctx, "skill.update", func(tx graph.Tx) error {
		var err error
		if skill, err = tx.Skills().Get(ctx, id); err != nil {
			return err
		}
		in.apply(&skill)
		return tx.Skills().Update(ctx, &skill)
	})
	if err != nil {
		return graph.Skill{}, err
	}
	s.invalidateSkills(ctx)
	return skill, nil
}

func (s *Service) GetSkill(ctx context.Context, id int64) (graph.Skill, error) {
	var skill graph.Skill
	err := s.read(ctx, func(tx graph.Tx) error {
		var err error
		skill, err = tx.Skills().Get(ctx, id)
		return err
	})
	return skill, err
}

// ListSkills serves the unfiltered catalog from cache when one is wired.
func (s *Service) ListSkills(ctx context.Context, f graph.SkillFilter) ([]graph.Skill, error) {
	cacheable := f.IsTechnical == nil && f.Category == "" && f.Search == "" &&
		len(f.Ordering) == 0 && f.Page == (graph.Page{})
	var version int64
	if cacheable {
		var ok bool
		version, ok = s.catalogVersion(ctx)
		cacheable = ok
	}
	if cacheable {
		var cached skillCatalog
		hit, err := s.cache().Get(ctx, skillCatalogKey, &cached)
		if err != nil {
			telemetry.Warn("cache.get_failed", map[string]any{"key": skillCatalogKey, "error": err})
		}
		if hit && cached.Version == version {
			return cached.Skills, nil
		}
	}

	var skills []graph.Skill
	err := s.read(ctx, func(tx graph.Tx) error {
		var err error
		skills, err = tx.Skills().List(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	if cacheable {
		entry := skillCatalog{Version: version, Skills: skills}
		if err := s.cache().Set(ctx, skillCatalogKey, entry, s.SkillCacheTTL); err != nil {
			telemetry.Warn("cache.set_failed", map[string]any{"key": skillCatalogKey, "error": err})
		}
	}
	return skills, nil
}

func (s *Service) DeleteSkill(ctx context.Context, id int64) error {
	err := s.write(ctx, "skill.delete", func(tx graph.Tx) error {
		return tx.Skills().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidateSkills(ctx)
	return nil
}

// SeedResult counts the outcome of SeedSkills.
type SeedResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// SeedSkills upserts a skill catalog by name in one unit of work.
func (s *Service) SeedSkills(ctx context.Context, items []SkillPayload) (SeedResult, error) {
	var res SeedResult
	err := s.write(ctx, "skill.seed", func(tx graph.Tx) error {
		for i, item := range items {
			want := item.toEntity()
			existing, err := tx.Skills().GetByName(ctx, want.Name)
			switch {
			case errors.Is(err, graph.ErrNotFound):
				if err := tx.Skills().Create(ctx, &want); err != nil {
					return nestedError("skills", i, err)
				}
				res.Created++
			case err != nil:
				return err
			default:
				want.ID = existing.ID
				if want == existing {
					continue
				}
				if err := tx.Skills().Update(ctx, &want); err != nil {
					return nestedError("skills", i, err)
				}
				res.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	s.invalidateSkills(ctx)
	return res, nil
}

// catalogVersion reads the current catalog version; a missing key is
// version zero. ok is false when the cache cannot answer.
func (s *Service) catalogVersion(ctx context.Context) (version int64, ok bool) {
	if _, err := s.cache().Get(ctx, skillCatalogVersionKey, &version); err != nil {
		telemetry.Warn("cache.get_failed", map[string]any{"key": skillCatalogVersionKey, "error": err})
		return 0, false
	}
	return version, true
}

// invalidateSkills runs after a skill write commits. Bumping the version
// retires any entry a concurrent ListSkills loaded before the commit, even
// one it stores after the delete below.
func (s *Service) invalidateSkills(ctx context.Context) {
	if _, err := s.cache().Incr(ctx, skillCatalogVersionKey); err != nil {
		telemetry.Warn("cache.incr_failed", map[string]any{"key": skillCatalogVersionKey, "error": err})
	}
	if err := s.cache().Delete(ctx, skillCatalogKey); err != nil {
		telemetry.Warn("cache.delete_failed", map[string]any{"key": skillCatalogKey, "error": err})
	}
}
