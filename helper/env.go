package helper

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/aorist/constants"
)

// GetEnvVar fetches OS environment variable.
// If the variable is not set it returns empty string.
// It also returns an error if there is a missing value AND mandatory == true.
func GetEnvVar(k string, mandatory bool) (string, error) {
	if value := os.Getenv(k); value != "" {
		return value, nil
	}
	if mandatory {
		return "", fmt.Errorf("environment variable %v is not set", k)
	}
	return "", nil
}

// ReadValueFromEnv will read the env var called name and populate the supplied val.
// If the env var is not set then return an error and leave val alone.
func ReadValueFromEnv(name string, val *string) error {
	v := os.Getenv(name)
	if v == "" {
		return fmt.Errorf("value for environment variable %v not found", name)
	}
	*val = v
	return nil
}

// ReadValueFromEnvWithDefault will read the value of name from the environment.
// If it's not set then it will return the supplied defaultValue.
func ReadValueFromEnvWithDefault(name string, defaultValue string) (v string) {
	_ = ReadValueFromEnv(name, &v)
	if v == "" {
		v = defaultValue
	}
	return
}

// GetEndpointEnvVarName returns the variable that overrides a field of an endpoint,
// e.g. ("presto", "HTTPPort") gives AORIST_PRESTO_HTTP_PORT.
func GetEndpointEnvVarName(endpoint string, field string) string {
	e := ToUpperSnakeCase(strings.TrimSpace(endpoint))
	f := ToUpperSnakeCase(strings.TrimSpace(field))
	return fmt.Sprintf("%v_%v_%v", constants.EnvVarPrefix, e, f)
}
