package integration

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/matgraph/optimade-client/internal/testutil"
	"github.com/matgraph/optimade-client/pkg/controller"
	"github.com/matgraph/optimade-client/pkg/query"
	"github.com/matgraph/optimade-client/pkg/response"
)

// setupRedis creates a Redis container for integration testing.
func setupRedis(t *testing.T) (*redis.Client, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	cleanup := func() {
		redisClient.Close()
		container.Terminate(ctx)
	}

	return redisClient, cleanup
}

// newController wires an executor backed by the given Redis client.
func newController(redisClient *redis.Client) *controller.Controller {
	cfg := query.DefaultConfig()
	cfg.UserAgent = "TestApp/1.0.0 (integration@test.com)"
	cfg.Redis = redisClient
	return controller.New(query.New(cfg), controller.DefaultConfig())
}

// TestFullQueryFlow tests the complete flow: Throttle → Cache → Provider → Cache Update.
func TestFullQueryFlow(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	provider := testutil.NewMockProvider()
	defer provider.Close()

	provider.SetStructuresResponse(testutil.NewStructuresResponse(
		[][2]string{{"1", "SiO2"}, {"2", "NaCl"}}, 2, ""))

	c := newController(redisClient)
	ctx := context.Background()

	// Query 1: cache miss, hits the provider, stores the response
	t.Log("Query 1: full flow - cache miss")
	result, err := c.SubmitQuery(ctx, provider.URL(), "nelements=2", 10, nil)
	if err != nil {
		t.Fatalf("Query 1 failed: %v", err)
	}

	if result.Outcome.Kind != response.KindSuccess {
		t.Fatalf("Query 1 outcome = %q, want success", result.Outcome.Kind)
	}
	if len(result.Structures) != 2 || result.Structures[0].Label() != "SiO2 (id=1)" {
		t.Errorf("Structures = %v, want SiO2 first", result.Structures)
	}
	if total := c.CurrentPagination().TotalCount; total == nil || *total != 2 {
		t.Errorf("TotalCount = %v, want 2", total)
	}

	if provider.GetRequestCount() != 1 {
		t.Errorf("After query 1: provider requests = %d, want 1", provider.GetRequestCount())
	}

	// The composed filter carries the exclusion predicate
	if got := provider.LastFilter(); got == "nelements=2" || got == "" {
		t.Errorf("provider saw filter %q, want fragment plus exclusion", got)
	}

	// Wait for cache write
	time.Sleep(100 * time.Millisecond)

	// Query 2: identical, served from cache without a provider call
	t.Log("Query 2: cache hit")
	result2, err := c.SubmitQuery(ctx, provider.URL(), "nelements=2", 10, nil)
	if err != nil {
		t.Fatalf("Query 2 failed: %v", err)
	}
	if result2.Outcome.Kind != response.KindSuccess {
		t.Fatalf("Query 2 outcome = %q, want success", result2.Outcome.Kind)
	}

	if provider.GetRequestCount() != 1 {
		t.Errorf("After query 2: provider requests = %d, want 1 (cached)", provider.GetRequestCount())
	}
}

// TestErrorResponsesNotCached tests that provider errors always reach the provider again.
func TestErrorResponsesNotCached(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	provider := testutil.NewMockProvider()
	defer provider.Close()

	provider.SetStructuresResponse(testutil.NewErrorResponse(
		400, "Bad Request", "unclosed parenthesis"))

	c := newController(redisClient)
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		result, err := c.SubmitQuery(ctx, provider.URL(), "((", 10, nil)
		if err != nil {
			t.Fatalf("Query %d failed: %v", i, err)
		}
		if result.Outcome.Kind != response.KindAPIError {
			t.Fatalf("Query %d outcome = %q, want api_error", i, result.Outcome.Kind)
		}
	}

	if provider.GetRequestCount() != 2 {
		t.Errorf("provider requests = %d, want 2 (errors not cached)", provider.GetRequestCount())
	}
}

// TestProviderCooldown tests that a 429 gates subsequent requests.
func TestProviderCooldown(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	provider := testutil.NewMockProvider()
	defer provider.Close()

	provider.SetStructuresResponse(testutil.NewRateLimitResponse(30))

	c := newController(redisClient)
	ctx := context.Background()

	// Query 1 reaches the provider and records the cooldown
	result, err := c.SubmitQuery(ctx, provider.URL(), "", 10, nil)
	if err != nil {
		t.Fatalf("Query 1 failed: %v", err)
	}
	if result.Outcome.Kind != response.KindAPIError {
		t.Fatalf("Query 1 outcome = %q, want api_error", result.Outcome.Kind)
	}
	if provider.GetRequestCount() != 1 {
		t.Fatalf("provider requests = %d, want 1", provider.GetRequestCount())
	}

	// Query 2 is blocked locally while the cooldown is active
	result, err = c.SubmitQuery(ctx, provider.URL(), "", 10, nil)
	if err != nil {
		t.Fatalf("Query 2 failed: %v", err)
	}
	if result.Outcome.Kind != response.KindTransportError {
		t.Errorf("Query 2 outcome = %q, want transport_error (throttled)", result.Outcome.Kind)
	}
	if provider.GetRequestCount() != 1 {
		t.Errorf("provider requests = %d, want 1 (blocked)", provider.GetRequestCount())
	}
}

// TestLinkPagination tests following a provider's continuation link.
func TestLinkPagination(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	provider := testutil.NewMockProvider()
	defer provider.Close()

	provider.SetResponse("/page2", testutil.NewStructuresResponse(
		[][2]string{{"3", "Fe2O3"}}, 3, ""))
	provider.SetStructuresResponse(testutil.NewStructuresResponse(
		[][2]string{{"1", "SiO2"}, {"2", "NaCl"}}, 3, provider.URL()+"/page2"))

	c := newController(redisClient)
	ctx := context.Background()

	if _, err := c.SubmitQuery(ctx, provider.URL(), "", 2, nil); err != nil {
		t.Fatalf("SubmitQuery failed: %v", err)
	}

	target, ok := c.NextPageTarget()
	if !ok || target.Link == "" {
		t.Fatalf("target = %+v, want continuation link", target)
	}

	result, err := c.AdvancePage(ctx, target)
	if err != nil {
		t.Fatalf("AdvancePage failed: %v", err)
	}
	if len(result.Structures) != 1 || result.Structures[0].Label() != "Fe2O3 (id=3)" {
		t.Errorf("Structures = %v, want Fe2O3", result.Structures)
	}

	// Total count from the first page survives the advance
	if total := c.CurrentPagination().TotalCount; total == nil || *total != 3 {
		t.Errorf("TotalCount = %v, want 3", total)
	}

	// Link pagination exhausted
	if _, ok := c.NextPageTarget(); ok {
		t.Error("NextPageTarget ok = true, want false after final page")
	}
}

// TestUnsupportedVersion tests the version gate against a live mock.
func TestUnsupportedVersion(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	provider := testutil.NewMockProvider()
	defer provider.Close()

	provider.SetStructuresResponse(testutil.NewUnsupportedVersionResponse())

	c := newController(redisClient)

	result, err := c.SubmitQuery(context.Background(), provider.URL(), "", 10, nil)
	if err != nil {
		t.Fatalf("SubmitQuery failed: %v", err)
	}
	if result.Outcome.Kind != response.KindVersionError {
		t.Errorf("outcome = %q, want version_error", result.Outcome.Kind)
	}
}

// TestMalformedResponse tests decode failures against a live mock.
func TestMalformedResponse(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	provider := testutil.NewMockProvider()
	defer provider.Close()

	provider.SetStructuresResponse(testutil.NewMalformedResponse())

	c := newController(redisClient)

	result, err := c.SubmitQuery(context.Background(), provider.URL(), "", 10, nil)
	if err != nil {
		t.Fatalf("SubmitQuery failed: %v", err)
	}
	if result.Outcome.Kind != response.KindAPIError {
		t.Fatalf("outcome = %q, want api_error for decode failure", result.Outcome.Kind)
	}
	if len(result.Outcome.Messages) != 1 || result.Outcome.Messages[0] != response.DecodeFailureMessage {
		t.Errorf("Messages = %v, want [%q]", result.Outcome.Messages, response.DecodeFailureMessage)
	}
}
