package main

import (
	"context"
	"time"

	"github.com/shandysiswandi/chemviz/internal/app"
)

const shutdownTimeout = 10 * time.Second

func main() {
	application := app.New()
	wait := application.Start()
	<-wait

	// the timeout starts counting at shutdown, not at startup
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	application.Stop(ctx)
}
