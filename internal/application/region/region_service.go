package region

import (
	"context"
	"time"

	"github.com/Faiz-abdurrachman/SIDESA/internal/application/txn"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/audit"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/identity"
	"github.com/Faiz-abdurrachman/SIDESA/internal/domain/region"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service manages RWs and RTs
type Service struct {
	rws     region.RWRepository
	rts     region.RTRepository
	scope   txn.TransactionScope
	metrics txn.Recorder
	logger  *zap.Logger
}

// NewService creates a new region Service
func NewService(
	rws region.RWRepository,
	rts region.RTRepository,
	scope txn.TransactionScope,
	metrics txn.Recorder,
	logger *zap.Logger,
) *Service {
	if metrics == nil {
		metrics = txn.NopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{rws: rws, rts: rts, scope: scope, metrics: metrics, logger: logger}
}

const adminOnly = "Only ADMIN can manage RW and RT"

// CreateRW creates an RW
func (s *Service) CreateRW(ctx context.Context, actor identity.Actor, req CreateRWRequest) (resp *RWResponse, err error) {
	defer func() { s.metrics.Mutation(ctx, audit.TableRWs, string(audit.ActionCreate), err) }()

	if err := actor.Require(adminOnly, identity.RoleAdmin); err != nil {
		return nil, err
	}
	rw, err := region.NewRW(req.Number)
	if err != nil {
		return nil, err
	}

	exists, err := s.rws.ExistsByNumber(ctx, rw.Number, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, region.ErrRWNumberTaken
	}

	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if err := repos.RWs().Create(ctx, rw); err != nil {
			return err
		}
		return repos.Audit().Append(ctx, audit.NewRecord(actor.ID, audit.ActionCreate, audit.TableRWs, rw.ID))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("RW created", zap.String("rw_id", rw.ID.String()), zap.String("nomor_rw", rw.Number))
	out := ToRWResponse(rw)
	return &out, nil
}

// UpdateRW renumbers an RW
func (s *Service) UpdateRW(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateRWRequest) (resp *RWResponse, err error) {
	defer func() { s.metrics.Mutation(ctx, audit.TableRWs, string(audit.ActionUpdate), err) }()

	if err := actor.Require(adminOnly, identity.RoleAdmin); err != nil {
		return nil, err
	}
	rw, err := s.rws.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Number != nil {
		number, err := region.NormalizeNumber(*req.Number)
		if err != nil {
			return nil, err
		}
		if number != rw.Number {
			exists, err := s.rws.ExistsByNumber(ctx, number, &rw.ID)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, region.ErrRWNumberTaken
			}
		}
		if err := rw.Rename(number); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if err := lockRW(ctx, repos.RWs(), rw.ID); err != nil {
			return err
		}
		if err := repos.RWs().Save(ctx, rw); err != nil {
			return err
		}
		return repos.Audit().Append(ctx, audit.NewRecord(actor.ID, audit.ActionUpdate, audit.TableRWs, rw.ID))
	})
	if err != nil {
		return nil, err
	}

	out := ToRWResponse(rw)
	return &out, nil
}

// RemoveRW archives an RW that has no active RT
func (s *Service) RemoveRW(ctx context.Context, actor identity.Actor, id uuid.UUID) (err error) {
	defer func() { s.metrics.Mutation(ctx, audit.TableRWs, string(audit.ActionDelete), err) }()

	if err := actor.Require(adminOnly, identity.RoleAdmin); err != nil {
		return err
	}

	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if err := lockRW(ctx, repos.RWs(), id); err != nil {
			return err
		}
		n, err := repos.RTs().CountActiveByRW(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return region.ErrRWHasActiveRTs
		}

		rw, err := repos.RWs().FindByID(ctx, id)
		if err != nil {
			return err
		}
		rw.Archive(time.Now())
		rw.Touch()
		if err := repos.RWs().Save(ctx, rw); err != nil {
			return err
		}
		return repos.Audit().Append(ctx, audit.NewRecord(actor.ID, audit.ActionDelete, audit.TableRWs, id))
	})
	if err != nil {
		return err
	}

	s.logger.Info("RW archived", zap.String("rw_id", id.String()))
	return nil
}

// GetRW returns a live RW
func (s *Service) GetRW(ctx context.Context, id uuid.UUID) (*RWResponse, error) {
	rw, err := s.rws.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToRWResponse(rw)
	return &out, nil
}

// ListRWs returns a page of live RWs
func (s *Service) ListRWs(ctx context.Context, filter ListFilter) ([]RWResponse, int64, error) {
	f := filter.base()
	rws, err := s.rws.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.rws.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]RWResponse, len(rws))
	for i := range rws {
		out[i] = ToRWResponse(&rws[i])
	}
	return out, total, nil
}

// CreateRT creates an RT under a live RW
func (s *Service) CreateRT(ctx context.Context, actor identity.Actor, req CreateRTRequest) (resp *RTResponse, err error) {
	defer func() { s.metrics.Mutation(ctx, audit.TableRTs, string(audit.ActionCreate), err) }()

	if err := actor.Require(adminOnly, identity.RoleAdmin); err != nil {
		return nil, err
	}
	rt, err := region.NewRT(req.Number, req.RWID)
	if err != nil {
		return nil, err
	}

	exists, err := s.rts.ExistsByNumber(ctx, rt.RWID, rt.Number, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, region.ErrRTNumberTaken
	}

	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if err := lockRW(ctx, repos.RWs(), rt.RWID); err != nil {
			return err
		}
		if err := repos.RTs().Create(ctx, rt); err != nil {
			return err
		}
		return repos.Audit().Append(ctx, audit.NewRecord(actor.ID, audit.ActionCreate, audit.TableRTs, rt.ID))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("RT created", zap.String("rt_id", rt.ID.String()), zap.String("rw_id", rt.RWID.String()))
	out := ToRTResponse(rt)
	return &out, nil
}

// UpdateRT renumbers an RT or moves it to another RW. The change is applied
// again to the row read under the RT lock.
func (s *Service) UpdateRT(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateRTRequest) (resp *RTResponse, err error) {
	defer func() { s.metrics.Mutation(ctx, audit.TableRTs, string(audit.ActionUpdate), err) }()

	if err := actor.Require(adminOnly, identity.RoleAdmin); err != nil {
		return nil, err
	}
	rt, err := s.rts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousRW := rt.RWID
	previousNumber := rt.Number
	if err := rt.Apply(region.RTChange{Number: req.Number, RWID: req.RWID}); err != nil {
		return nil, err
	}

	if rt.Number != previousNumber || rt.RWID != previousRW {
		exists, err := s.rts.ExistsByNumber(ctx, rt.RWID, rt.Number, &rt.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, region.ErrRTNumberTaken
		}
	}

	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if err := lockRT(ctx, repos.RTs(), id); err != nil {
			return err
		}
		rt, err = repos.RTs().FindByID(ctx, id)
		if err != nil {
			return err
		}
		previousRW = rt.RWID
		if err := rt.Apply(region.RTChange{Number: req.Number, RWID: req.RWID}); err != nil {
			return err
		}
		if rt.RWID != previousRW {
			if err := lockRW(ctx, repos.RWs(), rt.RWID); err != nil {
				return err
			}
		}
		if err := repos.RTs().Save(ctx, rt); err != nil {
			return err
		}
		return repos.Audit().Append(ctx, audit.NewRecord(actor.ID, audit.ActionUpdate, audit.TableRTs, rt.ID))
	})
	if err != nil {
		return nil, err
	}

	out := ToRTResponse(rt)
	return &out, nil
}

// RemoveRT archives an RT that no live family card references
func (s *Service) RemoveRT(ctx context.Context, actor identity.Actor, id uuid.UUID) (err error) {
	defer func() { s.metrics.Mutation(ctx, audit.TableRTs, string(audit.ActionDelete), err) }()

	if err := actor.Require(adminOnly, identity.RoleAdmin); err != nil {
		return err
	}

	err = s.scope.Execute(ctx, func(repos txn.Repositories) error {
		if err := lockRT(ctx, repos.RTs(), id); err != nil {
			return err
		}
		n, err := repos.Cards().CountActiveByRT(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return region.ErrRTHasCards
		}

		rt, err := repos.RTs().FindByID(ctx, id)
		if err != nil {
			return err
		}
		rt.Archive(time.Now())
		rt.Touch()
		if err := repos.RTs().Save(ctx, rt); err != nil {
			return err
		}
		return repos.Audit().Append(ctx, audit.NewRecord(actor.ID, audit.ActionDelete, audit.TableRTs, id))
	})
	if err != nil {
		return err
	}

	s.logger.Info("RT archived", zap.String("rt_id", id.String()))
	return nil
}

// GetRT returns a live RT
func (s *Service) GetRT(ctx context.Context, id uuid.UUID) (*RTResponse, error) {
	rt, err := s.rts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToRTResponse(rt)
	return &out, nil
}

// ListRTs returns a page of live RTs, optionally within one RW
func (s *Service) ListRTs(ctx context.Context, filter ListFilter) ([]RTResponse, int64, error) {
	f := region.RTFilter{Filter: filter.base(), RWID: filter.RWID}
	rts, err := s.rts.FindAll(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.rts.Count(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	out := make([]RTResponse, len(rts))
	for i := range rts {
		out[i] = ToRTResponse(&rts[i])
	}
	return out, total, nil
}

func lockRW(ctx context.Context, rws region.RWRepository, id uuid.UUID) error {
	n, err := rws.AcquireLock(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return region.ErrRWNotFound
	}
	return nil
}

func lockRT(ctx context.Context, rts region.RTRepository, id uuid.UUID) error {
	n, err := rts.AcquireLock(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return region.ErrRTNotFound
	}
	return nil
}
