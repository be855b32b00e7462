// Package pipeline turns one "file ready" event into an upload dispatch:
// snapshot the owning task config, resolve the destination (optionally moving
// the file into the task's staging folder), then hand off to the dispatcher.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"hotfolder/internal/config"
	"hotfolder/internal/uploader"
	"hotfolder/internal/utils"
)

// Pipeline processes ready files. Each invocation works on its own snapshot
// of the owning task config; that snapshot is the only thing protecting a run
// from configuration edits happening while it is in flight.
type Pipeline struct {
	Dispatcher    uploader.Dispatcher
	Notifications bool
}

func New(d uploader.Dispatcher, notifications bool) *Pipeline {
	return &Pipeline{Dispatcher: d, Notifications: notifications}
}

// Trigger handles one created file. A move or mkdir failure is fatal to this
// event only: the origin file is left untouched, nothing is dispatched, and
// other watch folders and future events are unaffected.
func (p *Pipeline) Trigger(origin string, s *config.Settings, owner *config.TaskConfig) {
	snap := owner.Snapshot()

	dest, err := p.resolve(origin, s, snap)
	if err != nil {
		out := fmt.Sprintf("Error staging %s: %v", filepath.Base(origin), err)
		log.Error(out)
		utils.SendNotification(p.Notifications, "hotfolder", out)
		return
	}
	if dest == "" {
		log.Infof("Skipped %s: destination already exists", origin)
		return
	}
	if dest != origin {
		log.Infof("Moved %s -> %s", filepath.ToSlash(origin), filepath.ToSlash(dest))
	}

	p.Dispatcher.Dispatch(dest, snap)
}

// resolve computes the destination path, moving the file when the watch
// folder stages uploads. Returns "" when the collision policy skipped the
// file.
func (p *Pipeline) resolve(origin string, s *config.Settings, snap *config.TaskConfig) (string, error) {
	if !s.MoveToStaging {
		return origin, nil
	}

	root := utils.ExpandTilde(snap.StagingFolder)
	if root == "" {
		return "", errors.New("move_to_staging set but task has no staging_folder")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return "", errors.Wrapf(err, "could not create staging folder %s", root)
	}

	dest, err := ResolveCollision(root, filepath.Base(origin), snap.Collision)
	if err != nil {
		return "", err
	}
	if dest == "" {
		return "", nil
	}

	if err := os.Rename(origin, dest); err != nil {
		if snap.Collision != config.CollisionOverwrite {
			releaseClaim(dest)
		}
		return "", errors.Wrapf(err, "could not move %s", origin)
	}
	return dest, nil
}
