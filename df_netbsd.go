//go:build netbsd
// +build netbsd

/*
diskuse -- refuse uploads based on filesystem usage
Copyright (C) 2016-2022 Sergey Matveev <stargrave@stargrave.org>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, version 3 of the License.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.
*/

package diskuse

import "golang.org/x/sys/unix"

const HaveStatfs = true

func StatFS(path string) (*FSStat, error) {
	var s unix.Statvfs_t
	if err := unix.Statvfs(path, &s); err != nil {
		return nil, err
	}
	return &FSStat{
		Blocks: uint64(s.Blocks),
		Bavail: uint64(s.Bavail),
		Bsize:  int64(s.Frsize),
	}, nil
}
