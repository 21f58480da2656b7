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

import "errors"

var (
	ErrNoStatfs   = errors.New("no statfs(2) or statvfs(2) on this system")
	ErrZeroBlocks = errors.New("filesystem reports zero blocks")
)

// FSStat is the filesystem statistics sample, taken anew for every
// checked command.
type FSStat struct {
	Blocks uint64
	Bavail uint64
	Bsize  int64
}

// Stater queries statistics of the filesystem containing the path.
type Stater func(path string) (*FSStat, error)

// FreeFraction is the share of blocks available to unprivileged users.
func (s *FSStat) FreeFraction() (float64, error) {
	if s.Blocks == 0 {
		return 0, ErrZeroBlocks
	}
	avail := s.Bavail
	if avail > s.Blocks {
		// negative f_bavail on BSDs wrapped around
		avail = 0
	}
	return float64(avail) / float64(s.Blocks), nil
}

func (s *FSStat) FreeBytes() uint64 {
	if s.Bavail > s.Blocks {
		return 0
	}
	return s.Bavail * uint64(s.Bsize)
}

func (s *FSStat) TotalBytes() uint64 {
	return s.Blocks * uint64(s.Bsize)
}
