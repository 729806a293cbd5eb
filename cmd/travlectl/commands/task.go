package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/starrycyq/travle/internal/core/ports"
	"github.com/starrycyq/travle/internal/domain"
	"github.com/starrycyq/travle/internal/transport/http/dto"
	"github.com/urfave/cli/v3"
)

const scrapePollInterval = 500 * time.Millisecond

// ScrapeAction submits a task, runs the worker in-process and prints the
// task once it reaches a terminal status.
func ScrapeAction(ctx context.Context, cmd *cli.Command) error {
	c, err := newContainer(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	maxItems := c.Config.Scraper.MaxItems
	if cmd.IsSet("max-items") {
		maxItems = cmd.Int("max-items")
	}

	taskID, err := c.TaskService.Submit(ctx, ports.SubmitTaskInput{
		OwnerID:  cmd.String("owner"),
		Keywords: cmd.StringSlice("keyword"),
		MaxItems: maxItems,
	})
	if err != nil {
		return err
	}
	if err := c.TaskService.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(scrapePollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		task, err := c.TaskService.GetTask(ctx, taskID)
		if err != nil {
			return err
		}
		if task.Status.IsTerminal() {
			if err := printJSON(dto.TaskToResponse(task)); err != nil {
				return err
			}
			if task.Status == domain.TaskStatusFailed {
				return cli.Exit("task failed: "+*task.Error, 1)
			}
			return nil
		}
	}
}

func TaskShowAction(ctx context.Context, cmd *cli.Command) error {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("task id argument is required")
	}

	c, err := newContainer(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	task, err := c.TaskService.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	return printJSON(dto.TaskToResponse(task))
}

func TaskListAction(ctx context.Context, cmd *cli.Command) error {
	c, err := newContainer(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	tasks, err := c.TaskService.ListTasks(ctx, cmd.String("owner"))
	if err != nil {
		return err
	}
	return printJSON(dto.TasksToResponse(tasks))
}

func TaskEventsAction(ctx context.Context, cmd *cli.Command) error {
	taskID := cmd.Args().First()
	if taskID == "" {
		return fmt.Errorf("task id argument is required")
	}

	c, err := newContainer(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeContainer(c)

	events, err := c.TaskService.TaskEvents(ctx, taskID)
	if err != nil {
		return err
	}
	return printJSON(events)
}
