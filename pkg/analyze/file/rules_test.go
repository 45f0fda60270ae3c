// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraklabs/revet/pkg/analyze"
)

func TestSQLInjectionDetectsSprintfQuery(t *testing.T) {
	content := "func Lookup(db *sql.DB, name string) {\n\tdb.Query(fmt.Sprintf(\"SELECT * FROM users WHERE name = '%s'\", name))\n}\n"
	f := analyze.File{Path: "store.go", Content: []byte(content), Language: "go"}
	findings := SQLInjection{}.Analyze(f, analyze.Config{})
	require.Len(t, findings, 1)
	assert.Equal(t, "SQL", findings[0].Prefix)
}

func TestMLPatternsDetectsLeakingFitOnTest(t *testing.T) {
	content := "scaler = StandardScaler()\nscaler.fit(X_test)\n"
	f := analyze.File{Path: "train.py", Content: []byte(content), Language: "python"}
	findings := MLPatterns{}.Analyze(f, analyze.Config{})
	require.Len(t, findings, 1)
	assert.Equal(t, "ML", findings[0].Prefix)
}

func TestInfraFlagsLatestTagAndPrivileged(t *testing.T) {
	content := "FROM ubuntu:latest\nUSER root\n"
	f := analyze.File{Path: "Dockerfile", Content: []byte(content)}
	findings := Infra{}.Analyze(f, analyze.Config{})
	require.Len(t, findings, 2)
	assert.Equal(t, "INFRA", findings[0].Prefix)
}

func TestInfraIgnoresNonInfraFiles(t *testing.T) {
	f := analyze.File{Path: "main.go", Content: []byte("FROM ubuntu:latest\n")}
	assert.Empty(t, Infra{}.Analyze(f, analyze.Config{}))
}

func TestHooksFlagsConditionalUseState(t *testing.T) {
	content := "function Widget() {\n  if (ready) { const [x, setX] = useState(0) }\n}\n"
	f := analyze.File{Path: "widget.tsx", Content: []byte(content), Language: "typescript"}
	findings := Hooks{}.Analyze(f, analyze.Config{})
	require.Len(t, findings, 1)
	assert.Equal(t, analyze.SeverityError, findings[0].Severity)
}

func TestAsyncFlagsUnwrapInRust(t *testing.T) {
	content := "async fn run() {\n    let v = fetch().await.unwrap();\n}\n"
	f := analyze.File{Path: "lib.rs", Content: []byte(content), Language: "rust"}
	findings := Async{}.Analyze(f, analyze.Config{})
	require.Len(t, findings, 1)
	assert.Equal(t, "ASYNC", findings[0].Prefix)
}

func TestDepHygieneFlagsWildcardVersion(t *testing.T) {
	content := "{\n  \"dependencies\": {\n    \"leftpad\": \"*\"\n  }\n}\n"
	f := analyze.File{Path: "package.json", Content: []byte(content)}
	findings := DepHygiene{}.Analyze(f, analyze.Config{})
	require.Len(t, findings, 1)
	assert.Equal(t, "DEP", findings[0].Prefix)
}

func TestDepHygieneIgnoresNonManifest(t *testing.T) {
	f := analyze.File{Path: "main.py", Content: []byte("requests\n")}
	assert.Empty(t, DepHygiene{}.Analyze(f, analyze.Config{}))
}

func TestErrHandlingFlagsBareExcept(t *testing.T) {
	content := "try:\n    risky()\nexcept:\n    pass\n"
	f := analyze.File{Path: "app.py", Content: []byte(content), Language: "python"}
	findings := ErrHandling{}.Analyze(f, analyze.Config{})
	require.NotEmpty(t, findings)
	assert.Equal(t, "ERR", findings[0].Prefix)
}

func TestToolchainFlagsUnpinnedCIAction(t *testing.T) {
	content := "steps:\n  - uses: some/action@master\n"
	f := analyze.File{Path: ".github/workflows/ci.yml", Content: []byte(content)}
	findings := Toolchain{}.Analyze(f, analyze.Config{})
	require.Len(t, findings, 1)
	assert.Equal(t, "TOOL", findings[0].Prefix)
}

func TestToolchainIgnoresUnrelatedFiles(t *testing.T) {
	f := analyze.File{Path: "main.go", Content: []byte("uses: some/action@master\n")}
	assert.Empty(t, Toolchain{}.Analyze(f, analyze.Config{}))
}
