package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mintgate/pkg/testutil"
)

func TestFromEnv(t *testing.T) {
	testutil.Given(t, "no environment overrides", func(t *testing.T) {
		cfg, err := FromEnv()
		require.NoError(t, err)

		testutil.Then(t, "defaults apply", func(t *testing.T) {
			assert.Equal(t, ":8080", cfg.Addr)
			assert.Equal(t, uint64(10000), cfg.MaxMintingLimit)
			assert.Equal(t, uint64(1000), cfg.PlatformMintingLimit)
			assert.Empty(t, cfg.KafkaBrokers)
		})
	})

	testutil.Given(t, "explicit minting budgets", func(t *testing.T) {
		t.Setenv("MINTGATE_MAX_MINTING_LIMIT", "500")
		t.Setenv("MINTGATE_PLATFORM_MINTING_LIMIT", "50")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, uint64(500), cfg.MaxMintingLimit)
		assert.Equal(t, uint64(50), cfg.PlatformMintingLimit)
	})

	testutil.Given(t, "a platform budget above the max", func(t *testing.T) {
		t.Setenv("MINTGATE_MAX_MINTING_LIMIT", "100")
		t.Setenv("MINTGATE_PLATFORM_MINTING_LIMIT", "200")

		_, err := FromEnv()
		testutil.Then(t, "configuration is rejected", func(t *testing.T) {
			assert.Error(t, err)
		})
	})

	testutil.Given(t, "a non-numeric budget", func(t *testing.T) {
		t.Setenv("MINTGATE_MAX_MINTING_LIMIT", "lots")

		_, err := FromEnv()
		assert.Error(t, err)
	})

	testutil.Given(t, "a messy broker list", func(t *testing.T) {
		t.Setenv("MINTGATE_KAFKA_BROKERS", " kafka-1:9092 ,kafka-2:9092,, kafka-1:9092 ")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	})
}
