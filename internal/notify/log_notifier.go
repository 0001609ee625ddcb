package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier records product changes as structured log entries. It is the
// default when no broker is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{log: logger.Named("notify")}
}

func (n *LogNotifier) emit(ctx context.Context, kind, product string, fields ...zap.Field) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Info("product notification", append([]zap.Field{
		zap.String("kind", kind),
		zap.String("product", product),
	}, fields...)...)
	return nil
}

func (n *LogNotifier) ProductCreated(ctx context.Context, name string) error {
	return n.emit(ctx, KindCreated, name)
}

// QuantityChanged is a no-op unless the stock status flipped.
func (n *LogNotifier) QuantityChanged(ctx context.Context, name string, becameInStock, becameOutOfStock bool) error {
	kind := quantityKind(becameInStock, becameOutOfStock)
	if kind == "" {
		return nil
	}
	return n.emit(ctx, kind, name)
}

func (n *LogNotifier) ProductChanged(ctx context.Context, name, changes string) error {
	return n.emit(ctx, KindChanged, name, zap.String("changes", changes))
}

func (n *LogNotifier) ProductUnavailable(ctx context.Context, name string) error {
	return n.emit(ctx, KindUnavailable, name)
}

func (n *LogNotifier) ProductAvailable(ctx context.Context, name string) error {
	return n.emit(ctx, KindAvailable, name)
}

func (n *LogNotifier) ProductDiscontinued(ctx context.Context, name string) error {
	return n.emit(ctx, KindDiscontinued, name)
}
