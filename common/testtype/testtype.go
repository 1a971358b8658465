// Copyright (C) Solr Tools Contributors 2019-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package testtype implements the helpers used to gate tests by class.
package testtype

import (
	"os"
	"strings"
	"testing"
)

const (
	// UnitTestType are tests that do not require a running Solr cluster.
	UnitTestType = "unit"

	// IntegrationTestType are tests that require a running Solr cluster.
	IntegrationTestType = "integration"
)

// EnvVar returns the environment variable that enables the given test type.
func EnvVar(testType string) string {
	return "TOOLS_TESTING_" + strings.ToUpper(testType)
}

// HasTestType returns true if the given test type was enabled via the
// corresponding TOOLS_TESTING_* environment variable.
func HasTestType(testType string) bool {
	return os.Getenv(EnvVar(testType)) != ""
}

// SkipUnlessTestType skips the current test unless the given test type is
// enabled in the environment.
func SkipUnlessTestType(t *testing.T, testType string) {
	if !HasTestType(testType) {
		t.Skipf("Skipping %v test", testType)
	}
}
