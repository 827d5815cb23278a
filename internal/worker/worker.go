package worker // import "github.com/Xunop/e-library/internal/worker"

import (
	"context"

	"github.com/Xunop/e-library/internal/model"
)

// Worker drains jobs from c until ctx is done.
type Worker interface {
	Run(ctx context.Context, c <-chan model.Job)
}
