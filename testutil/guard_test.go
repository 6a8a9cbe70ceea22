package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportPredicates(t *testing.T) {
	cases := []struct {
		name      string
		predicate func(string) bool
		in        string
		want      bool
	}{
		{"domain", DomainImportForbidden, "studentrecords/pkg/domain", true},
		{"domain versioned", DomainImportForbidden, "example.com/mod/pkg/domain@v1", true},
		{"not domain", DomainImportForbidden, "example.com/mod/pkg/notdomain", false},
		{"internal", InternalImportForbidden, "studentrecords/internal/core", true},
		{"public", InternalImportForbidden, "studentrecords/pkg/domain", false},
		{"infra", InfraImportForbidden, "studentrecords/internal/infra/persistence/file", true},
		{"core is not infra", InfraImportForbidden, "studentrecords/internal/core", false},
		{"stdlib", ThirdPartyImportForbidden, "encoding/json", false},
		{"module", ThirdPartyImportForbidden, "studentrecords/pkg/domain", false},
		{"third party", ThirdPartyImportForbidden, "github.com/google/uuid", true},
		{"vanity", ThirdPartyImportForbidden, "gopkg.in/yaml.v3", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.predicate(tc.in))
		})
	}
}

func TestAssertNoDirectImports(t *testing.T) {
	dir := t.TempDir()
	src := []byte("package tmp\nimport \"fmt\"\nfunc X(){fmt.Println(1)}")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.go"), src, 0o600))
	AssertNoDirectImports(t, dir, ThirdPartyImportForbidden, "stdlib only")
}

type recordingFatal struct{ msg string }

func (r *recordingFatal) Fatalf(format string, _ ...any) { r.msg = format }

func TestDirectViolationsReported(t *testing.T) {
	dir := t.TempDir()
	src := []byte("package tmp\nimport _ \"github.com/google/uuid\"\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.go"), src, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x_test.go"), []byte("package tmp\nimport _ \"gopkg.in/yaml.v3\"\n"), 0o600))

	viols, err := directImportViolations(dir, ThirdPartyImportForbidden)
	require.NoError(t, err)
	assert.Equal(t, []string{"github.com/google/uuid (in x.go)"}, viols)

	rec := &recordingFatal{}
	failIfDirectViolations(rec, "stdlib only", viols)
	assert.NotEmpty(t, rec.msg)
}
