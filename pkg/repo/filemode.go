package repo

import (
	"io/fs"

	"github.com/grove-vcs/grove/pkg/object"
)

// modeFromInfo maps a working tree file's stat mode onto the tree entry
// mode space: symlink, executable, or plain blob.
func modeFromInfo(info fs.FileInfo) object.FileMode {
	if info.Mode()&fs.ModeSymlink != 0 {
		return object.ModeSymlink
	}
	if info.Mode()&0o111 != 0 {
		return object.ModeExec
	}
	return object.ModeBlob
}
