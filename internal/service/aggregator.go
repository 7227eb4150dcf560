package service

import (
	"context"
	"errors"

	"dails-report/internal/domain"

	"golang.org/x/sync/errgroup"
)

type DeclarationReader interface {
	FindByID(ctx context.Context, id int64) (domain.Declaration, error)
	ListSpouses(ctx context.Context, declarationID int64) ([]domain.HouseholdMember, error)
	ListChildren(ctx context.Context, declarationID int64) ([]domain.HouseholdMember, error)
	ListLegacy(ctx context.Context, declarationID int64) ([]domain.LegacyDeclaration, error)
	ListLegacyItems(ctx context.Context, declarationID int64) ([]domain.LegacyItem, error)
}

// Aggregator loads everything a report needs for one declaration.
type Aggregator struct {
	repo DeclarationReader
}

func NewAggregator(repo DeclarationReader) *Aggregator {
	return &Aggregator{repo: repo}
}

// Load runs the lookups concurrently and waits for all of them. A missing
// declaration is reported as domain.ErrNotFound even when another lookup
// failed first; every other failure comes back as *domain.StorageError.
func (a *Aggregator) Load(ctx context.Context, id int64) (domain.Bundle, error) {
	g, gctx := errgroup.WithContext(ctx)

	var (
		bundle  domain.Bundle
		items   []domain.LegacyItem
		declErr error
	)

	g.Go(func() error {
		d, err := a.repo.FindByID(gctx, id)
		if err != nil {
			declErr = err
			return wrapStorage("load declaration", err)
		}
		bundle.Declaration = d
		return nil
	})
	g.Go(func() error {
		spouses, err := a.repo.ListSpouses(gctx, id)
		if err != nil {
			return wrapStorage("load spouses", err)
		}
		bundle.Spouses = spouses
		return nil
	})
	g.Go(func() error {
		children, err := a.repo.ListChildren(gctx, id)
		if err != nil {
			return wrapStorage("load children", err)
		}
		bundle.Children = children
		return nil
	})
	g.Go(func() error {
		legacy, err := a.repo.ListLegacy(gctx, id)
		if err != nil {
			return wrapStorage("load financial declarations", err)
		}
		bundle.Legacy = legacy
		return nil
	})
	g.Go(func() error {
		var err error
		items, err = a.repo.ListLegacyItems(gctx, id)
		if err != nil {
			return wrapStorage("load financial items", err)
		}
		return nil
	})

	err := g.Wait()
	if errors.Is(declErr, domain.ErrNotFound) {
		return domain.Bundle{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Bundle{}, err
	}

	byParent := make(map[int64][]domain.LegacyItem, len(bundle.Legacy))
	for _, it := range items {
		byParent[it.FinancialDeclarationID] = append(byParent[it.FinancialDeclarationID], it)
	}
	for i := range bundle.Legacy {
		bundle.Legacy[i].Items = byParent[bundle.Legacy[i].ID]
	}

	return bundle, nil
}

func wrapStorage(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	var se *domain.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &domain.StorageError{Op: op, Err: err}
}
