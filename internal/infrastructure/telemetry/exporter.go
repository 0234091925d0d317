package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// shutdownTimeout bounds the final flush of each signal pipeline
const shutdownTimeout = 10 * time.Second

// collectorOptions builds the OTLP/gRPC dial options shared by every signal.
// Each exporter package has its own option type, hence the constructors.
func collectorOptions[O any](endpoint string, insecure bool, withEndpoint func(string) O, withInsecure func() O) []O {
	opts := []O{withEndpoint(endpoint)}
	if insecure {
		opts = append(opts, withInsecure())
	}
	return opts
}

// shutdownSignal flushes and stops one pipeline within shutdownTimeout
func shutdownSignal(ctx context.Context, logger *zap.Logger, signal string, flush func(context.Context) error) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := flush(shutdownCtx); err != nil {
		logger.Error("Error shutting down telemetry pipeline", zap.String("signal", signal), zap.Error(err))
		return fmt.Errorf("failed to shutdown %s provider: %w", signal, err)
	}
	logger.Info("Telemetry pipeline shut down", zap.String("signal", signal))
	return nil
}
