package components

import (
	"log/slog"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/transaction-importer/internal/config"
	"github.com/transaction-importer/internal/currency"
	"github.com/transaction-importer/internal/import_worker/service"
)

func TestCreateImportService(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	logger := slog.Default()
	deps := ImportDependencies{
		DB:           pool,
		Transactions: &MockTransactionRepo{},
		Rejections:   &MockRejectionRepo{},
		Normalizer:   currency.NewNormalizer(currency.DefaultBaseCurrency, currency.DefaultRates(), logger),
	}

	cfg := &config.Config{
		Storage:    config.StorageConfig{MaxUploadSize: 1 << 20},
		WorkerPool: config.WorkerPoolConfig{Size: 4},
	}

	importService := CreateImportService(deps, logger, cfg)
	require.NotNil(t, importService)

	pooled, ok := importService.(*service.WorkerPoolImportService)
	require.True(t, ok, "a valid pool size yields the pooled service")
	defer pooled.Shutdown()
	assert.Equal(t, 4, pooled.Capacity())
}
