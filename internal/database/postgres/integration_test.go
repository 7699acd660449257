//go:build integration

package postgres

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sainath9392/tinylink/internal/database"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

type IntegrationTestSuite struct {
	suite.Suite
	pgCont *tcpostgres.PostgresContainer
	dsn    string
	db     *sqlx.DB
	repo   *LinkRepository
}

func (suite *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	var err error
	suite.pgCont, err = tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("tinylink"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		suite.T().Fatalf("Failed to start postgres container: %v", err)
	}
	suite.T().Cleanup(func() {
		if err := suite.pgCont.Terminate(ctx); err != nil {
			suite.T().Fatalf("Failed to terminate postgres container: %v", err)
		}
	})

	suite.dsn, err = suite.pgCont.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		suite.T().Fatalf("Failed to get connection string: %v", err)
	}

	if err := RunMigrations(suite.dsn); err != nil {
		suite.T().Fatalf("Failed to run migrations: %v", err)
	}

	suite.db, err = New(ctx, suite.dsn)
	if err != nil {
		suite.T().Fatalf("Failed to connect to database: %v", err)
	}
	suite.T().Cleanup(func() {
		suite.db.Close()
	})

	suite.repo = NewLinkRepository(suite.db)
}

func (suite *IntegrationTestSuite) TearDownSubTest() {
	if _, err := suite.db.Exec(`TRUNCATE TABLE links RESTART IDENTITY`); err != nil {
		suite.T().Fatalf("Failed to clean links table: %v", err)
	}
}

func (suite *IntegrationTestSuite) TestCreate() {
	ctx := context.Background()

	suite.Run("duplicate short code leaves a single row", func() {
		_, err := suite.repo.Create(ctx, "abc123", "https://example.com", "user-1")
		suite.Require().NoError(err)

		link, err := suite.repo.Create(ctx, "abc123", "https://example.org", "user-2")

		suite.ErrorIs(err, database.ErrShortCodeExists)
		suite.Nil(link)

		var count int
		suite.Require().NoError(suite.db.Get(&count, `SELECT COUNT(*) FROM links`))
		suite.Equal(1, count)
	})

	suite.Run("new link starts without clicks", func() {
		link, err := suite.repo.Create(ctx, "abc123", "https://example.com", "user-1")

		suite.Require().NoError(err)
		suite.NotZero(link.ID)
		suite.Zero(link.Clicks)
		suite.Nil(link.LastClickedAt)
		suite.False(link.CreatedAt.IsZero())
	})
}

func (suite *IntegrationTestSuite) TestListByOwner() {
	ctx := context.Background()

	suite.Run("only the owner's links, newest first", func() {
		for _, code := range []string{"first1", "second", "third3"} {
			_, err := suite.repo.Create(ctx, code, "https://example.com/"+code, "user-1")
			suite.Require().NoError(err)
		}
		_, err := suite.repo.Create(ctx, "other1", "https://example.com", "user-2")
		suite.Require().NoError(err)

		links, err := suite.repo.ListByOwner(ctx, "user-1")

		suite.Require().NoError(err)
		suite.Require().Len(links, 3)
		suite.Equal("third3", links[0].ShortCode)
		suite.Equal("second", links[1].ShortCode)
		suite.Equal("first1", links[2].ShortCode)
		for _, link := range links {
			suite.Equal("user-1", link.OwnerID)
		}
	})
}

func (suite *IntegrationTestSuite) TestRecordClick() {
	ctx := context.Background()

	suite.Run("concurrent clicks are not lost", func() {
		_, err := suite.repo.Create(ctx, "abc123", "https://example.com", "user-1")
		suite.Require().NoError(err)

		const clicks = 50
		clickedAt := time.Now()

		var wg sync.WaitGroup
		for i := 0; i < clicks; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				suite.NoError(suite.repo.RecordClick(ctx, "abc123", clickedAt))
			}()
		}
		wg.Wait()

		link, err := suite.repo.GetByShortCode(ctx, "abc123")

		suite.Require().NoError(err)
		suite.Equal(int64(clicks), link.Clicks)
		suite.Require().NotNil(link.LastClickedAt)
		suite.WithinDuration(clickedAt, *link.LastClickedAt, time.Millisecond)
	})

	suite.Run("last clicked at never moves backwards", func() {
		_, err := suite.repo.Create(ctx, "abc123", "https://example.com", "user-1")
		suite.Require().NoError(err)

		later := time.Now()
		earlier := later.Add(-time.Minute)

		suite.Require().NoError(suite.repo.RecordClick(ctx, "abc123", later))
		suite.Require().NoError(suite.repo.RecordClick(ctx, "abc123", earlier))

		link, err := suite.repo.GetByShortCode(ctx, "abc123")

		suite.Require().NoError(err)
		suite.Equal(int64(2), link.Clicks)
		suite.WithinDuration(later, *link.LastClickedAt, time.Millisecond)
	})

	suite.Run("deleted link", func() {
		err := suite.repo.RecordClick(ctx, "gone12", time.Now())

		suite.ErrorIs(err, database.ErrLinkNotFound)
	})
}

func (suite *IntegrationTestSuite) TestDelete() {
	ctx := context.Background()

	suite.Run("second delete reports not found", func() {
		_, err := suite.repo.Create(ctx, "abc123", "https://example.com", "user-1")
		suite.Require().NoError(err)

		suite.NoError(suite.repo.Delete(ctx, "abc123"))
		suite.ErrorIs(suite.repo.Delete(ctx, "abc123"), database.ErrLinkNotFound)
	})
}

func TestIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	suite.Run(t, new(IntegrationTestSuite))
}
