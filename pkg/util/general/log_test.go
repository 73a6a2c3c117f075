/*
Copyright 2022 The Katalyst Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package general

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func logFromHelper(pkg LoggingPKG) string {
	return loggingPath(pkg, "extra %v %v", 1, "test")
}

func TestLoggingPrefix(t *testing.T) {
	t.Parallel()

	require.Equal(t, "[TestLoggingPrefix] extra 1 test", logFromHelper(LoggingPKGNone))
	require.Equal(t, "[general.TestLoggingPrefix] extra 1 test", logFromHelper(LoggingPKGShort))
	require.Equal(t, "[katalyst-membound/pkg/util/general.TestLoggingPrefix] extra 1 test", logFromHelper(LoggingPKGFull))
}

func TestLoggerPrefix(t *testing.T) {
	t.Parallel()

	l := LoggerWithPrefix("SPM READ", LoggingPKGNone)
	require.Equal(t, "[SPM READ: TestLoggerPrefix] burst 16", logLine(l))
}

func logLine(l Logger) string {
	return l.logging("burst %d", 16)
}

func TestLoggingPKGFlag(t *testing.T) {
	t.Parallel()

	var l LoggingPKG
	require.NoError(t, l.Set("1"))
	require.Equal(t, LoggingPKGShort, l)
	require.Error(t, l.Set("short"))
	require.Equal(t, "LoggingPKG", l.Type())
}
