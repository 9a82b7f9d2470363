package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/rdapgw/internal/registrar"
	"github.com/zjrosen/rdapgw/internal/snapshot"
)

func setupTestRepo(t *testing.T) snapshot.Repository {
	t.Helper()
	db, _ := openTestDB(t)
	return db.SnapshotRepository()
}

var base = time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

func sampleRun(id string, at time.Time) *snapshot.Run {
	return &snapshot.Run{
		ID:                id,
		CreatedAt:         at,
		WorkbookPath:      "registrars.xlsx",
		Records:           3,
		GrandTotalDomains: 180,
		Providers:         2,
		GatewayPercent:    44.4,
		SelfHostedPercent: 55.6,
		Warnings:          1,
		Shares: []snapshot.ProviderShare{
			{Provider: registrar.SelfHostedName, Kind: registrar.KindSelfHosted, RegistrarCount: 1, TotalDomains: 100, MarketSharePercent: 55.6},
			{Provider: "Tucows", Kind: registrar.KindGateway, RegistrarCount: 2, TotalDomains: 80, MarketSharePercent: 44.4},
		},
	}
}

func TestSnapshotRepository_SaveAndFind(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	run := sampleRun(uuid.NewString(), base)
	run.EnrichmentPath = "enrichment.json"

	require.NoError(t, repo.Save(ctx, run))

	found, err := repo.FindByID(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, run, found)
}

func TestSnapshotRepository_NullableEnrichmentPath(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	run := sampleRun("r1", base)
	require.NoError(t, repo.Save(ctx, run))

	found, err := repo.FindByID(ctx, "r1")
	require.NoError(t, err)
	require.Empty(t, found.EnrichmentPath)
}

func TestSnapshotRepository_NotFound(t *testing.T) {
	repo := setupTestRepo(t)

	_, err := repo.FindByID(context.Background(), "missing")
	var nf *snapshot.RunNotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "missing", nf.ID)

	_, err = repo.Latest(context.Background())
	require.True(t, errors.As(err, &nf))
}

func TestSnapshotRepository_DuplicateIDRollsBack(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, sampleRun("dup", base)))

	second := sampleRun("dup", base.Add(time.Hour))
	second.Shares = append(second.Shares, snapshot.ProviderShare{Provider: "X", Kind: registrar.KindCandidate})
	require.Error(t, repo.Save(ctx, second))

	found, err := repo.FindByID(ctx, "dup")
	require.NoError(t, err)
	require.Len(t, found.Shares, 2)
	require.Equal(t, base, found.CreatedAt)
}

func TestSnapshotRepository_RequiresID(t *testing.T) {
	repo := setupTestRepo(t)
	require.Error(t, repo.Save(context.Background(), sampleRun("", base)))
}

func TestSnapshotRepository_ListAndLatest(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		require.NoError(t, repo.Save(ctx, sampleRun(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Hour))))
	}

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.Equal(t, "run-3", all[0].ID)
	require.Equal(t, "run-0", all[3].ID)
	require.Empty(t, all[0].Shares, "list does not load shares")

	two, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, two, 2)

	latest, err := repo.Latest(ctx)
	require.NoError(t, err)
	require.Equal(t, "run-3", latest.ID)
	require.Len(t, latest.Shares, 2)
}

func TestSnapshotRepository_SharesKeepOrder(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()
	n := 0

	rapid.Check(t, func(rt *rapid.T) {
		n++
		count := rapid.IntRange(0, 12).Draw(rt, "count")
		run := sampleRun(fmt.Sprintf("prop-%d", n), base)
		run.Shares = nil
		for i := 0; i < count; i++ {
			run.Shares = append(run.Shares, snapshot.ProviderShare{
				Provider:           fmt.Sprintf("p%02d", i),
				Kind:               rapid.SampledFrom([]registrar.Kind{registrar.KindGateway, registrar.KindCandidate, registrar.KindSelfHosted}).Draw(rt, fmt.Sprintf("kind%d", i)),
				TotalDomains:       rapid.Int64Range(0, 1_000_000).Draw(rt, fmt.Sprintf("domains%d", i)),
				MarketSharePercent: float64(rapid.IntRange(0, 1000).Draw(rt, fmt.Sprintf("share%d", i))) / 10,
			})
		}
		if err := repo.Save(ctx, run); err != nil {
			rt.Fatalf("save: %v", err)
		}
		found, err := repo.FindByID(ctx, run.ID)
		if err != nil {
			rt.Fatalf("find: %v", err)
		}
		if len(found.Shares) != len(run.Shares) {
			rt.Fatalf("got %d shares, want %d", len(found.Shares), len(run.Shares))
		}
		for i := range run.Shares {
			if found.Shares[i] != run.Shares[i] {
				rt.Fatalf("share %d: got %+v, want %+v", i, found.Shares[i], run.Shares[i])
			}
		}
	})
}
