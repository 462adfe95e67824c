package accounts_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/accountsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for accounts service end-to-end
 * tests. The service runs from its Docker image, exactly as deployed.
 */

const (
	testImageName = "accounts-e2e-test:latest"

	jwtSecret     = "e2e-secret-that-is-at-least-32-bytes-long"
	adminEmail    = "admin@example.com"
	adminPassword = "Admin123!"
	userPassword  = "password123"
)

// TestMain builds the Docker image once before all tests and removes it
// afterwards.
func TestMain(m *testing.M) {
	if testing.Short() {
		os.Exit(m.Run())
	}

	fmt.Fprintf(os.Stdout, "Building accounts service Docker image...")
	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up accounts service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/accounts/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	cmd := exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName)
	_ = cmd.Run()
}

func skipIfNoDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("e2e tests need Docker")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

func baseEnv() map[string]string {
	return map[string]string{
		"ENV":                     "test",
		"LOG_LEVEL":               "info",
		"LOG_FORMAT":              "json",
		"ACCOUNTS_JWT_SECRET":     jwtSecret,
		"ACCOUNTS_ADMIN_EMAIL":    adminEmail,
		"ACCOUNTS_ADMIN_PASSWORD": adminPassword,
	}
}

// setupAccountsContainer starts the service on its default sqlite store and
// returns a client for it.
func setupAccountsContainer(t *testing.T) *accountsdk.Client {
	t.Helper()
	skipIfNoDocker(t)

	return startService(t, testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          baseEnv(),
		WaitingFor:   readyWait(),
	})
}

// setupAccountsWithMongo starts MongoDB and the service on a shared network
// with the mongo driver selected.
func setupAccountsWithMongo(t *testing.T) *accountsdk.Client {
	t.Helper()
	skipIfNoDocker(t)
	ctx := context.Background()

	net, err := network.New(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := net.Remove(ctx); err != nil {
			t.Logf("failed to remove network: %v", err)
		}
	})

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:          "mongo:7",
			ExposedPorts:   []string{"27017/tcp"},
			Networks:       []string{net.Name},
			NetworkAliases: map[string][]string{net.Name: {"mongo"}},
			WaitingFor:     wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := mongoC.Terminate(ctx); err != nil {
			t.Logf("failed to terminate mongo: %v", err)
		}
	})

	env := baseEnv()
	env["ACCOUNTS_STORE_DRIVER"] = "mongo"
	env["ACCOUNTS_MONGO_URI"] = "mongodb://mongo:27017"
	env["ACCOUNTS_MONGO_DATABASE"] = "accounts_e2e"

	return startService(t, testcontainers.ContainerRequest{
		Image:        testImageName,
		ExposedPorts: []string{"8080/tcp"},
		Env:          env,
		Networks:     []string{net.Name},
		WaitingFor:   readyWait(),
	})
}

func readyWait() wait.Strategy {
	return wait.ForHTTP("/readyz").
		WithPort("8080/tcp").
		WithStartupTimeout(60 * time.Second)
}

func startService(t *testing.T, req testcontainers.ContainerRequest) *accountsdk.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return accountsdk.NewClient(fmt.Sprintf("http://%s:%s", host, mappedPort.Port()))
}

// signup registers a user with userPassword.
func signup(t *testing.T, client *accountsdk.Client, name, email string) *accountsdk.Session {
	t.Helper()
	sess, err := client.Signup(t.Context(), accountsdk.SignupRequest{
		FullName: name,
		Email:    email,
		Password: userPassword,
	})
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token())
	return sess
}

func loginAdmin(t *testing.T, client *accountsdk.Client) *accountsdk.Session {
	t.Helper()
	sess, err := client.Login(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err)
	require.Equal(t, accountsdk.RoleAdmin, sess.User().Role)
	return sess
}

// assertAPIError checks err carries the given status and message.
func assertAPIError(t *testing.T, err error, want *accountsdk.APIError) {
	t.Helper()
	var apiErr *accountsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, want.StatusCode, apiErr.StatusCode)
	require.Equal(t, want.Message, apiErr.Message)
}

// assertHealthy verifies a health check response is OK.
func assertHealthy(t *testing.T, health *accountsdk.HealthResponse, err error) {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, health)
	require.Equal(t, "ok", health.Status)
}
