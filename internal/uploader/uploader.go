// Package uploader is the hand-off boundary between the watch-folder
// pipeline and whatever actually transfers files. The pipeline calls
// Dispatch fire-and-forget with a resolved path and a config snapshot.
package uploader

import (
	"fmt"
	"os/exec"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"hotfolder/internal/config"
	"hotfolder/internal/utils"
)

// Dispatcher accepts a ready file plus the task-config snapshot it was
// resolved under.
type Dispatcher interface {
	Dispatch(path string, snap *config.TaskConfig)
}

// CommandDispatcher runs the task's configured upload command with the file
// path as its argument. Tasks without a command just get logged; the file is
// already at its final location either way.
type CommandDispatcher struct {
	Notifications bool
}

func NewCommandDispatcher(notifications bool) *CommandDispatcher {
	return &CommandDispatcher{Notifications: notifications}
}

func (d *CommandDispatcher) Dispatch(path string, snap *config.TaskConfig) {
	if snap.UploadCommand == "" {
		log.Infof("Ready for upload (no upload_command configured): %s", path)
		return
	}

	cmd := exec.Command(snap.UploadCommand, path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		out := fmt.Sprintf("Upload command failed for %s: %v", filepath.Base(path), err)
		log.Errorf("%s\n%s", out, output)
		utils.SendNotification(d.Notifications, "hotfolder", out)
		return
	}

	out := fmt.Sprintf("Uploaded %s", filepath.Base(path))
	log.Info(out)
	utils.SendNotification(d.Notifications, "hotfolder", out)
}
