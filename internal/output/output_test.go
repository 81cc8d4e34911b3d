package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUI() (*UI, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &UI{Out: out, ErrOut: errOut}, out, errOut
}

func TestInfo(t *testing.T) {
	u, out, _ := newTestUI()
	u.Info("hello %s", "world")
	assert.Contains(t, out.String(), "hello world")
}

func TestSuccess(t *testing.T) {
	u, out, _ := newTestUI()
	u.Success("done %d", 42)
	assert.Contains(t, out.String(), "done 42")
}

func TestWarning(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Warning("careful %s", "now")
	assert.Contains(t, errOut.String(), "careful now")
}

func TestError(t *testing.T) {
	u, _, errOut := newTestUI()
	u.Error("failed %s", "badly")
	assert.Contains(t, errOut.String(), "failed badly")
}

func TestVerboseLog(t *testing.T) {
	u, out, _ := newTestUI()
	u.VerboseLog("detail %d", 1)
	assert.Empty(t, out.String())

	u.Verbose = true
	u.VerboseLog("detail %d", 2)
	assert.Contains(t, out.String(), "detail 2")
}

func TestDryRunMsg(t *testing.T) {
	u, _, errOut := newTestUI()
	u.DryRunMsg("would restore %s", "backup")
	assert.Empty(t, errOut.String())

	u.DryRun = true
	u.DryRunMsg("would restore %s", "backup")
	assert.Contains(t, errOut.String(), "[DRY-RUN]")
	assert.Contains(t, errOut.String(), "would restore backup")
}

func TestStatusColor(t *testing.T) {
	assert.NotEmpty(t, StatusColor("pending"))
	assert.NotEmpty(t, StatusColor("in_progress"))
	assert.NotEmpty(t, StatusColor("completed"))
	assert.NotEmpty(t, StatusColor("identified"))
	assert.NotEmpty(t, StatusColor("closed"))
	assert.Equal(t, "mystery", StatusColor("mystery"))
}

func TestHealthColor(t *testing.T) {
	assert.NotEmpty(t, HealthColor(90))
	assert.NotEmpty(t, HealthColor(65))
	assert.NotEmpty(t, HealthColor(45))
	assert.NotEmpty(t, HealthColor(10))
}

func TestRiskValueColor(t *testing.T) {
	assert.NotEmpty(t, RiskValueColor(85))
	assert.NotEmpty(t, RiskValueColor(50))
	assert.NotEmpty(t, RiskValueColor(25))
	assert.NotEmpty(t, RiskValueColor(5))
}

func TestTable(t *testing.T) {
	u, out, _ := newTestUI()
	table := u.Table([]string{"Project", "Stage"})
	require.NotNil(t, table)

	table.Append([]string{"meter-gen2", "production"})
	table.Append([]string{"relay-board", "debugging"})
	err := table.Render()
	require.NoError(t, err)

	result := out.String()
	assert.True(t, strings.Contains(result, "meter-gen2"), "table output should contain project names")
	assert.True(t, strings.Contains(result, "relay-board"), "table output should contain project names")
}
