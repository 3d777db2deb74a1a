package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Rank(t *testing.T) {
	assert.Equal(t, 0, StatusSupported.Rank())
	assert.Equal(t, 1, StatusInProgress.Rank())
	assert.Equal(t, 2, StatusNotSupported.Rank())
	assert.Equal(t, 3, StatusError.Rank())
	assert.Equal(t, 4, Status("Unknown").Rank())
}

func TestParseHandle(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    Handle
		expectError bool
	}{
		{name: "标准格式", input: "btcpayserver/btcpayserver", expected: Handle{Owner: "btcpayserver", Name: "btcpayserver"}},
		{name: "带空格", input: "  muun/apollo ", expected: Handle{Owner: "muun", Name: "apollo"}},
		{name: "缺少名称", input: "muun/", expectError: true},
		{name: "缺少斜杠", input: "apollo", expectError: true},
		{name: "层级过多", input: "a/b/c", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHandle(tt.input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, h)
		})
	}
}

func TestHandle_URL(t *testing.T) {
	h := Handle{Owner: "BlueWallet", Name: "BlueWallet"}
	assert.Equal(t, "BlueWallet/BlueWallet", h.String())
	assert.Equal(t, "https://github.com/BlueWallet/BlueWallet", h.HTMLURL())
}

func TestNewErrorResult(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h := Handle{Owner: "X", Name: "W"}

	r := NewErrorResult(h, errors.New("boom"), now)

	assert.Equal(t, "W", r.Name)
	assert.Equal(t, "X/W", r.FullName)
	assert.Equal(t, "https://github.com/X/W", r.URL)
	assert.Equal(t, 0, r.Stars)
	assert.Equal(t, now, r.LastUpdated)
	assert.Equal(t, StatusError, r.Status)
	assert.Equal(t, []string{"boom"}, r.Evidence)
}

func TestScanOutcome_Result(t *testing.T) {
	o := &ScanOutcome{
		Name:     "Y",
		FullName: "X/Y",
		URL:      "https://github.com/X/Y",
		Stars:    42,
		Evidence: []string{"BIP-353 mentioned in README"},
	}

	r := o.Result(StatusInProgress)
	assert.Equal(t, StatusInProgress, r.Status)
	assert.Equal(t, 42, r.Stars)
	assert.True(t, r.HasEvidence())

	// 结果与扫描输出互不影响
	o.Evidence[0] = "changed"
	assert.Equal(t, "BIP-353 mentioned in README", r.Evidence[0])
}

func TestSummarize(t *testing.T) {
	results := []*RepositoryResult{
		{Status: StatusSupported},
		{Status: StatusInProgress},
		{Status: StatusInProgress},
		{Status: StatusNotSupported},
		{Status: StatusError},
	}

	s := Summarize(results)
	assert.Equal(t, Summary{Supported: 1, InProgress: 2, NotSupported: 1, Errors: 1}, s)
	assert.Equal(t, Summary{}, Summarize(nil))
}
