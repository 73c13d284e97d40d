package pg

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/chatter-dev/chatter/internal/config"
	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
)

var storage *Storage

func TestMain(m *testing.M) {
	ctx := context.Background()
	var container *postgres.PostgresContainer
	storage, container = mustSetup(ctx)
	defer teardown(ctx, storage, container)

	exitCode := m.Run()
	os.Exit(exitCode)
}

func mustSetup(ctx context.Context) (*Storage, *postgres.PostgresContainer) {
	dbName := "chatter"
	dbUser := "user"
	dbPassword := "password"
	container, err := postgres.Run(ctx,
		"postgres:15.3-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		testcontainers.WithWaitStrategy(
			// First, we wait for the container to log readiness twice.
			// This is because it will restart itself after the first startup.
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start container: %s", err)
	}
	containerPort, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		log.Fatalf("failed to obtain container port: %s", err)
	}
	port, err := strconv.Atoi(containerPort.Port())
	if err != nil {
		log.Fatalf("failed to obtain int container port: %s", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatalf("failed to obtain container host: %s", err)
	}

	// New creates the schema on first connect, no init scripts needed
	storage, err := New(&config.Config{
		Public:  config.Public{PageSize: 3},
		Private: config.Private{Pg: config.Pg{Host: host, Port: port, User: dbUser, Password: dbPassword, Dbname: dbName}},
	})
	if err != nil {
		log.Fatalf("failed to connect to postgres container: %s", err)
	}
	return storage, container
}

func teardown(ctx context.Context, storage *Storage, container *postgres.PostgresContainer) {
	if err := storage.Cleanup(); err != nil {
		log.Printf("failed to close storage connection: %s", err)
	}
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
}

func generateEmail(t *testing.T) string {
	t.Helper()
	return fmt.Sprintf("user%d@example.com", rand.Int63())
}

func requireNotFoundError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	if internal_errors.IsNotFound(err) {
		return
	}
	var statusErr *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 404, statusErr.StatusCode)
}

// createTestUser saves a fresh user and registers cleanup.
func createTestUser(t *testing.T) domain.UserId {
	t.Helper()
	id, err := storage.SaveUser(domain.User{Name: "Test User", Email: generateEmail(t), PassHash: "hash"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = storage.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	})
	return id
}

// createTestWorkspace creates a workspace owned by a fresh user and returns
// the workspace id plus the owner's admin membership.
func createTestWorkspace(t *testing.T) (domain.WorkspaceId, domain.Member) {
	t.Helper()
	owner := createTestUser(t)
	wid, err := storage.CreateWorkspace(domain.WorkspaceCreationData{Name: "Test Workspace", Owner: owner, JoinCode: "abc123"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = storage.DeleteWorkspace(wid)
	})

	admin, err := storage.MemberByWorkspaceAndUser(context.Background(), wid, owner)
	require.NoError(t, err)
	return wid, admin
}

// joinTestMember adds a fresh user to the workspace as a regular member.
func joinTestMember(t *testing.T, wid domain.WorkspaceId) domain.Member {
	t.Helper()
	userId := createTestUser(t)
	member, err := storage.CreateMember(wid, userId, domain.RoleMember)
	require.NoError(t, err)
	return member
}

func createTestChannel(t *testing.T, wid domain.WorkspaceId) domain.ChannelId {
	t.Helper()
	id, err := storage.CreateChannel(domain.ChannelCreationData{Name: "general", WorkspaceId: wid})
	require.NoError(t, err)
	return id
}
