package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointDefaults(t *testing.T) {
	e := EndpointConfig{
		Alluxio: &AlluxioConfig{Server: "alluxio"},
		Presto:  &PrestoConfig{Server: "presto"},
		Gitea:   &GiteaConfig{},
	}
	e.ApplyDefaults()
	assert.Equal(t, 19998, e.Alluxio.RPCPort)
	assert.Equal(t, 39999, e.Alluxio.APIPort)
	assert.Equal(t, "alluxio", e.Alluxio.ServerCLI)
	assert.Equal(t, "presto:8080", e.Presto.Address())
	assert.Equal(t, "aorist", e.Presto.User)
	assert.Equal(t, "localhost", e.Gitea.Server)
	assert.Equal(t, 3000, e.Gitea.Port)
	assert.Equal(t, []string{"alluxio", "presto", "gitea"}, e.Names())
}

func TestEndpointEnvOverrides(t *testing.T) {
	env := map[string]string{
		"AORIST_POSTGRES_PASSWORD": "s3cret",
		"AORIST_POSTGRES_PORT":     "5433",
		"AORIST_MINIO_SECRET_KEY":  "ignored because minio is not configured",
	}
	e := EndpointConfig{Postgres: &PostgresConfig{Server: "db", Username: "u"}}
	require.NoError(t, e.ApplyEnv(func(k string) string { return env[k] }))
	assert.Equal(t, "s3cret", e.Postgres.Password)
	assert.Equal(t, 5433, e.Postgres.Port)
	assert.Nil(t, e.Minio)

	env["AORIST_POSTGRES_PORT"] = "not-a-number"
	assert.Error(t, e.ApplyEnv(func(k string) string { return env[k] }))
}

func TestEndpointMerge(t *testing.T) {
	e := EndpointConfig{Presto: &PrestoConfig{Server: "a"}}
	e.Merge(EndpointConfig{Presto: &PrestoConfig{Server: "b"}, Gitea: &GiteaConfig{Token: "t"}})
	assert.Equal(t, "b", e.Presto.Server)
	assert.Equal(t, "t", e.Gitea.Token)
}

func TestEndpointCopy(t *testing.T) {
	e := EndpointConfig{Presto: &PrestoConfig{Server: "a"}, Postgres: &PostgresConfig{Server: "db", Username: "u"}}
	c := e.Copy()
	c.Presto.HTTPPort = 9090
	c.ApplyDefaults()
	assert.Equal(t, 0, e.Presto.HTTPPort)
	assert.Equal(t, 0, e.Postgres.Port)
	assert.Equal(t, "a", c.Presto.Server)
	assert.Nil(t, c.Gitea)
	assert.Equal(t, e.Names(), c.Names())
}

func TestNewPostgresConfigFromURL(t *testing.T) {
	c, err := NewPostgresConfigFromURL("postgres://bob:pw@db.local:6432/")
	require.NoError(t, err)
	assert.Equal(t, &PostgresConfig{Server: "db.local", Port: 6432, Username: "bob", Password: "pw"}, c)

	c, err = NewPostgresConfigFromURL("postgres://bob@db.local/")
	require.NoError(t, err)
	assert.Equal(t, 5432, c.Port)

	_, err = NewPostgresConfigFromURL("mysql://bob@db.local/")
	assert.Error(t, err)
}
