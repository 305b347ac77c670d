package cmd

import (
	"errors"
	"os"
	"testing"
)

func TestSetupTwelveFactorMode(t *testing.T) {
	defer func() {
		_ = os.Unsetenv(envVarTwelveFactorMode)
		setupTwelveFactorMode()
	}()
	_ = os.Unsetenv(envVarTwelveFactorMode)
	setupTwelveFactorMode()
	if twelveFactorMode {
		t.Fatal("expected twelveFactorMode to be false; got true")
	}
	_ = os.Setenv(envVarTwelveFactorMode, "1")
	setupTwelveFactorMode()
	if !twelveFactorMode {
		t.Fatal("expected twelveFactorMode to be true; got false")
	}
}

func TestExecute12FactorMode(t *testing.T) {
	results := make(map[string]int)
	mockActions := map[string]func() error{
		"dag": func() error {
			results["dag"]++
			return nil
		},
		"universe-uuids": func() error {
			results["universe-uuids"]++
			return nil
		},
		"flow": func() error {
			return errors.New("flow failed")
		},
	}
	setenv := func(command string, subcommand string) {
		_ = os.Setenv(envVarCommand, command)
		_ = os.Setenv(envVarSubcommand, subcommand)
	}
	_ = os.Setenv(envVarLogLevel, "error")
	defer func() {
		for _, k := range []string{envVarCommand, envVarSubcommand, envVarLogLevel} {
			_ = os.Unsetenv(k)
		}
	}()

	// Test 1 - a command without a subcommand.
	setenv("dag", "")
	if err := execute12FactorMode(mockActions); err != nil {
		t.Fatalf("test 1 failed: expected nil error got error: %v", err)
	}
	// Test 2 - a command with a subcommand, in any case.
	setenv("Universe", "UUIDs")
	if err := execute12FactorMode(mockActions); err != nil {
		t.Fatalf("test 2 failed: expected nil error got error: %v", err)
	}
	if results["dag"] != 1 || results["universe-uuids"] != 1 {
		t.Fatalf("expected each action to run once; got %v", results)
	}
	// Test 3 - errors from the action are returned.
	setenv("flow", "")
	if err := execute12FactorMode(mockActions); err == nil {
		t.Fatal("test 3 failed: expected the action error")
	}
	// Test 4 - unknown actions.
	setenv("cp", "snap")
	if err := execute12FactorMode(mockActions); err == nil {
		t.Fatal("test 4 failed: expected an error for an unknown action")
	}
}

func TestTwelveFactorEndpoints(t *testing.T) {
	env := map[string]string{
		"AORIST_PRESTO_SERVER":     "presto-coordinator",
		"AORIST_POSTGRES_PASSWORD": "secret",
		"AORIST_AWS_REGION":        "eu-west-2",
	}
	e, err := TwelveFactorEndpoints{Getenv: func(k string) string { return env[k] }}.GetEndpointConfig("any")
	if err != nil {
		t.Fatal(err)
	}
	names := e.Names()
	if len(names) != 3 || names[0] != "presto" || names[1] != "postgres" || names[2] != "aws" {
		t.Fatalf("unexpected endpoints %v", names)
	}
	if err = e.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatal(err)
	}
	if e.Presto.Server != "presto-coordinator" || e.Postgres.Password != "secret" || e.AWS.Region != "eu-west-2" {
		t.Fatalf("environment values were not applied: %+v %+v %+v", e.Presto, e.Postgres, e.AWS)
	}
	_, err = TwelveFactorEndpoints{Getenv: func(string) string { return "" }}.GetEndpointConfig("any")
	if err == nil {
		t.Fatal("expected an error when no endpoint variables are set")
	}
}
