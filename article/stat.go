package article

import (
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

func formatTag(dev, ino uint64) string {
	return strconv.FormatUint(dev, 10) + "-" + strconv.FormatUint(ino, 10)
}

// fileTag returns the identity tag and size of an open file.
func fileTag(f *os.File) (string, int64, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return "", 0, &os.PathError{Op: "fstat", Path: f.Name(), Err: err}
	}
	return formatTag(uint64(st.Dev), uint64(st.Ino)), st.Size, nil
}

func pathTag(path string) (string, int64, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return "", 0, &os.PathError{Op: "stat", Path: path, Err: err}
	}
	return formatTag(uint64(st.Dev), uint64(st.Ino)), st.Size, nil
}
