// Copyright (C) Solr Tools Contributors 2019-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package options

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/solr-tools/solr-tools/common/testtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOptions(enabled EnabledOptions) *ToolOptions {
	return New("testtool", "built-without-version-string",
		"build-without-git-commit", "<options>", enabled)
}

func TestVerbosityFlag(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	Convey("With a ToolOptions", t, func() {
		enabled := EnabledOptions{}
		optPtr := newTestOptions(enabled)
		So(optPtr, ShouldNotBeNil)
		So(optPtr.parser, ShouldNotBeNil)

		Convey("no verbosity flags, Level should be 0", func() {
			_, err := optPtr.CallArgParser([]string{})
			So(err, ShouldBeNil)
			So(optPtr.Level(), ShouldEqual, 0)
		})

		Convey("one short verbosity flag, Level should be 1", func() {
			_, err := optPtr.CallArgParser([]string{"-v"})
			So(err, ShouldBeNil)
			So(optPtr.Level(), ShouldEqual, 1)
		})

		Convey("three short verbosity flags (consecutive), Level should be 3", func() {
			_, err := optPtr.CallArgParser([]string{"-vvv"})
			So(err, ShouldBeNil)
			So(optPtr.Level(), ShouldEqual, 3)
		})

		Convey("three short verbosity flags (dispersed), Level should be 3", func() {
			_, err := optPtr.CallArgParser([]string{"-v", "-v", "-v"})
			So(err, ShouldBeNil)
			So(optPtr.Level(), ShouldEqual, 3)
		})

		Convey("short verbosity flag assigned to 3, Level should be 3", func() {
			_, err := optPtr.CallArgParser([]string{"-v=3"})
			So(err, ShouldBeNil)
			So(optPtr.Level(), ShouldEqual, 3)
		})

		Convey("long verbosity flag assigned to 5, Level should be 5", func() {
			_, err := optPtr.CallArgParser([]string{"--verbose=5"})
			So(err, ShouldBeNil)
			So(optPtr.Level(), ShouldEqual, 5)
		})

		Convey("mixed assignment and bare flags, Level should be sum", func() {
			_, err := optPtr.CallArgParser([]string{"-v", "--verbose=3"})
			So(err, ShouldBeNil)
			So(optPtr.Level(), ShouldEqual, 4)
		})

		Convey("--quiet should set IsQuiet", func() {
			_, err := optPtr.CallArgParser([]string{"--quiet"})
			So(err, ShouldBeNil)
			So(optPtr.IsQuiet(), ShouldBeTrue)
		})
	})
}

func TestConnectionAddresses(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	Convey("With a Connection", t, func() {
		Convey("a single host without a port gets the default port", func() {
			conn := &Connection{Host: "localhost"}
			So(conn.Addresses(), ShouldResemble, []string{"localhost:8983"})
		})

		Convey("a single host with a port is passed through", func() {
			conn := &Connection{Host: "localhost:8984"}
			So(conn.Addresses(), ShouldResemble, []string{"localhost:8984"})
		})

		Convey("the --port option applies to hosts without one", func() {
			conn := &Connection{Host: "solr1,solr2:9000", Port: "8985"}
			So(conn.Addresses(), ShouldResemble,
				[]string{"solr1:8985", "solr2:9000"})
		})

		Convey("whitespace and empty entries are dropped", func() {
			conn := &Connection{Host: " solr1 , ,solr2 "}
			So(conn.Addresses(), ShouldResemble,
				[]string{"solr1:8983", "solr2:8983"})
		})
	})
}

func TestParseConfigFile(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	writeConfig := func(t *testing.T, contents string) string {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
		return path
	}

	t.Run("password is read from the config file", func(t *testing.T) {
		opts := newTestOptions(EnabledOptions{Auth: true})
		path := writeConfig(t, "password: qwerty\n")

		_, err := opts.ParseArgs([]string{"--config", path})
		require.NoError(t, err)
		assert.Equal(t, "qwerty", opts.Auth.Password)
	})

	t.Run("command line password overrides the config file", func(t *testing.T) {
		opts := newTestOptions(EnabledOptions{Auth: true})
		path := writeConfig(t, "password: qwerty\n")

		_, err := opts.ParseArgs([]string{"--config", path, "--password", "hunter2"})
		require.NoError(t, err)
		assert.Equal(t, "hunter2", opts.Auth.Password)
	})

	t.Run("unknown keys are rejected", func(t *testing.T) {
		opts := newTestOptions(EnabledOptions{Auth: true})
		path := writeConfig(t, "passwrod: qwerty\n")

		_, err := opts.ParseArgs([]string{"--config", path})
		require.Error(t, err)
	})

	t.Run("a missing config file is an error", func(t *testing.T) {
		opts := newTestOptions(EnabledOptions{Auth: true})

		_, err := opts.ParseArgs([]string{"--config", "/nonexistent/config.yaml"})
		require.Error(t, err)
	})
}

func TestEnabledOptions(t *testing.T) {
	testtype.SkipUnlessTestType(t, testtype.UnitTestType)

	t.Run("disabled groups reject their flags", func(t *testing.T) {
		opts := newTestOptions(EnabledOptions{})
		_, err := opts.CallArgParser([]string{"--host", "localhost"})
		require.Error(t, err)
	})

	t.Run("enabled groups accept their flags", func(t *testing.T) {
		opts := newTestOptions(EnabledOptions{Connection: true, Auth: true})
		_, err := opts.CallArgParser(
			[]string{"--host", "localhost", "--username", "admin"})
		require.NoError(t, err)
		assert.Equal(t, "localhost", opts.Host)
		assert.Equal(t, "admin", opts.Username)
		assert.True(t, opts.Auth.IsSet())
	})

	t.Run("extra positional arguments are returned", func(t *testing.T) {
		opts := newTestOptions(EnabledOptions{})
		extra, err := opts.CallArgParser([]string{"leftover"})
		require.NoError(t, err)
		assert.Equal(t, []string{"leftover"}, extra)
	})
}
