package xmlfix

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairBatch_OrderPreserved(t *testing.T) {
	engine := MustNew()
	inputs := []string{
		"<a>1",
		"<b>2</b>",
		"<c>3</c>",
	}

	results := engine.RepairBatch(context.Background(), inputs)

	require.Len(t, results, 3)
	assert.Equal(t, "<a>1</a>", results[0].Output)
	assert.Equal(t, "<b>2</b>", results[1].Output)
	assert.Equal(t, "<c>3</c>", results[2].Output)
	for i, result := range results {
		assert.Equal(t, i, result.Index)
		assert.NoError(t, result.Err)
		assert.NotNil(t, result.Report)
	}
}

func TestRepairBatch_FailureIsolation(t *testing.T) {
	engine := MustNew()
	inputs := []string{"<ok>1</ok>", "", "<ok>3</ok>"}

	results := engine.RepairBatch(context.Background(), inputs)

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	require.Error(t, results[1].Err)
	assert.ErrorContains(t, results[1].Err, ErrMsgInputEmpty)
	assert.Empty(t, results[1].Output)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, "<ok>3</ok>", results[2].Output)
}

func TestRepairBatch_CancelledContext(t *testing.T) {
	engine := MustNew()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := engine.RepairBatch(ctx, []string{"<a/>", "<b/>"})

	require.Len(t, results, 2)
	for _, result := range results {
		assert.ErrorIs(t, result.Err, context.Canceled)
		assert.Empty(t, result.Output)
	}
}

func TestRepairBatch_LargerThanWorkerPool(t *testing.T) {
	engine := MustNew()
	inputs := make([]string, 3*DefaultBatchWorkers)
	for i := range inputs {
		inputs[i] = fmt.Sprintf("<item>%d", i)
	}

	results := engine.RepairBatch(context.Background(), inputs)

	require.Len(t, results, len(inputs))
	for i, result := range results {
		require.NoError(t, result.Err)
		assert.Equal(t, fmt.Sprintf("<item>%d</item>", i), result.Output)
	}
}

func TestRepairBatch_Empty(t *testing.T) {
	engine := MustNew()
	assert.Empty(t, engine.RepairBatch(context.Background(), nil))
}

func TestRepairBatch_OneShot(t *testing.T) {
	results, err := RepairBatch(context.Background(), []string{"<a>1"}, WithMatchThreshold(1))

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "<a>1</a>", results[0].Output)
}
