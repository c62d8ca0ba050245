package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransitionJobCommand(t *testing.T) {
	jobID := kernel.NewUUID()

	t.Run("should keep a well formed security code", func(t *testing.T) {
		cmd, err := commands.NewTransitionJobCommand(jobID, job.Delivered, job.TransitionOptions{SecurityCode: "4821"})

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
		assert.Equal(t, job.SecurityCode("4821"), cmd.Options().SecurityCode)
	})

	t.Run("should reject a malformed security code", func(t *testing.T) {
		_, err := commands.NewTransitionJobCommand(jobID, job.Delivered, job.TransitionOptions{SecurityCode: "48"})

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject an unknown initiator", func(t *testing.T) {
		_, err := commands.NewTransitionJobCommand(jobID, job.Cancelled, job.TransitionOptions{CancelledBy: "driver"})

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should copy the courier id", func(t *testing.T) {
		courierID := kernel.NewUUID()

		cmd, err := commands.NewTransitionJobCommand(jobID, job.Accepted, job.TransitionOptions{CourierID: &courierID})
		require.NoError(t, err)
		courierID = kernel.NewUUID()

		assert.False(t, cmd.Options().CourierID.IsEqual(courierID))
	})
}
