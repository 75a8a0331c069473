package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/tdx/internal/formatter"
	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/shared"
	"github.com/desertthunder/tdx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// List fetches items scoped by --filter and renders them.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	filter, err := models.ParseFilter(cmd.String("filter"))
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	sync := r.newSynchronizer(r.storeFor(cmd), nil)
	defer sync.Close()

	if err := sync.ChangeFilter(ctx, filter); err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	st := sync.State()
	opts := formatter.Options{Pretty: cmd.Bool("pretty"), Filter: st.Filter}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(path, format, st.Items, opts); err != nil {
			return err
		}
		r.logger.Info("items exported", "path", path, "count", len(st.Items), "format", format)
		return r.writePlain("✓ Exported %d items to %s\n", len(st.Items), path)
	}

	data, err := formatter.Render(format, st.Items, opts)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// Add creates an item named by the first argument.
func (r *Runner) Add(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: item name", shared.ErrMissingArgument)
	}

	sync := r.newSynchronizer(r.storeFor(cmd), nil)
	defer sync.Close()

	if err := sync.AddItem(ctx, name); err != nil {
		return fmt.Errorf("failed to add item: %w", err)
	}

	st := sync.State()
	created := st.Items[len(st.Items)-1]

	if cmd.Bool("json") {
		return r.writeJSON(created, false)
	}
	return r.writePlain("✓ Added #%d %s\n", created.ID, created.Name)
}

// Toggle flips the completed flag of the item given by id.
func (r *Runner) Toggle(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	item, err := r.editOnce(ctx, cmd, id, func(s *tasks.Synchronizer) error { return s.Toggle(id) })
	if err != nil {
		return err
	}

	state := "active"
	if item.Completed {
		state = "completed"
	}
	return r.writePlain("✓ #%d %s is now %s\n", item.ID, item.Name, state)
}

// Rename sets the name of the item given by id.
func (r *Runner) Rename(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: new name", shared.ErrMissingArgument)
	}

	item, err := r.editOnce(ctx, cmd, id, func(s *tasks.Synchronizer) error { return s.Rename(id, name) })
	if err != nil {
		return err
	}
	return r.writePlain("✓ #%d renamed to %s\n", item.ID, item.Name)
}

// Remove deletes the item given by id.
func (r *Runner) Remove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd.StringArg("id"))
	if err != nil {
		return err
	}

	sync := r.newSynchronizer(r.storeFor(cmd), nil)
	defer sync.Close()

	if err := sync.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item %d: %w", id, err)
	}
	return r.writePlain("✓ Deleted #%d\n", id)
}

// editOnce loads the list, applies edit to the item with id and flushes the coalesced write before returning.
//
// A failed write is only visible as an error event, so events are drained after Close.
func (r *Runner) editOnce(ctx context.Context, cmd *cli.Command, id int, edit func(*tasks.Synchronizer) error) (models.Item, error) {
	events := make(chan tasks.Event, 16)
	sync := r.newSynchronizer(r.storeFor(cmd), events)

	if err := sync.Initialize(ctx); err != nil {
		sync.Close()
		return models.Item{}, fmt.Errorf("failed to load items: %w", err)
	}
	if _, ok := sync.State().Find(id); !ok {
		sync.Close()
		return models.Item{}, fmt.Errorf("%w: %d", shared.ErrItemNotFound, id)
	}
	if err := edit(sync); err != nil {
		sync.Close()
		return models.Item{}, err
	}

	item, _ := sync.State().Find(id)
	sync.Close()

	for {
		select {
		case ev := <-events:
			if ev.Kind == tasks.EventError && ev.Op == tasks.OpUpdate {
				return item, ev.Err
			}
		default:
			return item, nil
		}
	}
}

func parseID(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: item id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid item id %q", shared.ErrInvalidArgument, s)
	}
	return id, nil
}
