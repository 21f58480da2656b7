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

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.cypherpunks.ru/recfile"
)

func (ctx *Ctx) HumanizeRec(rec string) string {
	r := recfile.NewReader(strings.NewReader(rec))
	le, err := r.NextMap()
	if err != nil {
		return rec
	}
	humanized, err := ctx.Humanize(le)
	if err != nil {
		return fmt.Sprintf("Can not humanize: %s\n%s", err, rec)
	}
	return humanized
}

func bytesHumanize(raw string) (string, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return "", err
	}
	return humanize.IBytes(v), nil
}

func (ctx *Ctx) Humanize(le map[string]string) (string, error) {
	var msg string
	switch le["Who"] {
	case "diskuse-deny":
		msg = fmt.Sprintf(
			"%s denied to user %s (max usage %s, currently %s)",
			le["Cmd"], le["User"], le["MaxUsage"], le["CurUsage"],
		)
		if raw, exists := le["FreeBytes"]; exists {
			free, err := bytesHumanize(raw)
			if err != nil {
				return "", err
			}
			msg += fmt.Sprintf(": %s left on %s", free, le["Dir"])
		}
	case "diskuse-policy":
		if strings.EqualFold(le["Limit"], NoneKeyword) {
			msg = fmt.Sprintf("%s (none) nullifies inherited limits", DirectiveName)
		} else {
			msg = fmt.Sprintf("%s (%s%%) in effect", DirectiveName, le["Limit"])
		}
		if le["Scope"] != ScopeUnscoped.String() {
			msg += " for current " + le["Scope"]
		}
	case "diskuse-nopolicy":
		msg = fmt.Sprintf("No %s in effect for user %s", DirectiveName, le["User"])
	case "diskuse-stat":
		msg = fmt.Sprintf("Unable to stat fs %s", le["Dir"])
	case "diskuse-free":
		free, err := bytesHumanize(le["FreeBytes"])
		if err != nil {
			return "", err
		}
		total, err := bytesHumanize(le["TotalBytes"])
		if err != nil {
			return "", err
		}
		msg = fmt.Sprintf(
			"Filesystem of %s: %s free of %s (used %s, max %s)",
			le["Dir"], free, total, le["CurUsage"], le["MaxUsage"],
		)
	default:
		m, exists := le["Msg"]
		if !exists {
			return "", errors.New("unknown Who")
		}
		msg = m
	}
	if err, exists := le["Err"]; exists {
		msg += ": " + err
	}
	when, err := time.Parse(time.RFC3339Nano, le["When"])
	if err != nil {
		return "", err
	}
	var level string
	if _, isErr := le["Err"]; isErr {
		level = "ERROR "
	}
	return fmt.Sprintf("%s %s%s", when.Format(time.RFC3339), level, msg), nil
}
