package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kohi-labs/kohi-cli/internal/adapters/driven/config/file"
	"github.com/kohi-labs/kohi-cli/internal/core/services"
)

func TestQueryCmd_Use(t *testing.T) {
	assert.Equal(t, "query [question]", queryCmd.Use)
}

func TestQueryCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"query"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestQueryCmd_HasTopKFlag(t *testing.T) {
	flag := queryCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "7", flag.DefValue)
}

func TestQueryCmd_SynthesizesAnswer(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "推薦水洗耶加雪菲"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "推薦衣索比亞 耶加雪菲。")
}

func TestQueryCmd_RetrieveOnly(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "--retrieve-only", "耶加雪菲"})
	defer func() {
		rootCmd.SetArgs(nil)
		queryRetrieveOnly = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "doc1-core_info-0")
	assert.Contains(t, buf.String(), "semantic 0.910")
	assert.NotContains(t, buf.String(), "推薦衣索比亞")
}

func TestQueryCmd_RetrieveOnlyJSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "--retrieve-only", "--json", "耶加雪菲"})
	defer func() {
		rootCmd.SetArgs(nil)
		queryRetrieveOnly = false
		queryJSON = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "\"doc_id\": \"doc1\"")
	assert.Contains(t, buf.String(), "\"chunk_id\": \"doc1-core_info-0\"")
}

func TestQueryCmd_ConfiguredTopKApplies(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	retriever := &mockRetriever{}
	retrieverService = retriever

	cfg, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cfg.Set("retrieval.top_k", int64(3)))
	configStore = cfg

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "--retrieve-only", "耶加雪菲"})
	defer func() {
		rootCmd.SetArgs(nil)
		queryRetrieveOnly = false
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 3, retriever.gotOpts.TopK)

	// An explicit flag wins over the configured value.
	rootCmd.SetArgs([]string{"query", "--retrieve-only", "--top-k", "2", "耶加雪菲"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, 2, retriever.gotOpts.TopK)
}

func TestQueryCmd_DefaultTopKWithoutConfig(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	retriever := &mockRetriever{}
	retrieverService = retriever
	queryTopK = services.DefaultTopK

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "--retrieve-only", "耶加雪菲"})
	defer func() {
		rootCmd.SetArgs(nil)
		queryRetrieveOnly = false
	}()

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, services.DefaultTopK, retriever.gotOpts.TopK)
}

func TestQueryCmd_RetrieverNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	retrieverService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"query", "test"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retriever not configured")
}

func TestQueryCmd_RetrievalError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	retrieverService = &mockRetriever{err: errService}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"query", "test"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retrieval failed")
}

func TestQueryCmd_EmptyResultsText(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	retrieverService = &mockRetriever{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "--retrieve-only", "沒有的東西"})
	defer func() {
		rootCmd.SetArgs(nil)
		queryRetrieveOnly = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No results found.")
}
