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
	"io/ioutil"
	"net"
	"os"
	"path"
	"sync"

	gologme "github.com/gologme/log"
)

type Ctx struct {
	Global  []*Rule
	VHosts  map[string]*VHost
	Classes []*Class

	LogPath string
	Quiet   bool
	Debug   bool

	glogOnce sync.Once
	glog     *gologme.Logger
}

// Rules returns MaxDiskUsage rules applicable to the vhost and
// anonymous root in the order of precedence: the anonymous root ones
// first, then vhost ones, then global. Declaration order is kept
// within the same scope. Unknown vhost or empty anon are skipped.
func (ctx *Ctx) Rules(vhostName, anon string) []*Rule {
	var rules []*Rule
	if vhost, ok := ctx.VHosts[vhostName]; ok {
		if anon != "" {
			rules = append(rules, vhost.Anon[path.Clean(anon)]...)
		}
		rules = append(rules, vhost.Rules...)
	}
	return append(rules, ctx.Global...)
}

// ClassOf returns the name of the first class, in name order, that
// contains ip. Empty string if none.
func (ctx *Ctx) ClassOf(ip net.IP) string {
	if ip == nil {
		return ""
	}
	for _, class := range ctx.Classes {
		if class.Contains(ip) {
			return class.Name
		}
	}
	return ""
}

func (ctx *Ctx) diag() *gologme.Logger {
	ctx.glogOnce.Do(func() {
		ctx.glog = gologme.New(os.Stderr, "diskuse: ", gologme.Lmsgprefix)
		ctx.glog.EnableLevel("warn")
		ctx.glog.EnableLevel("error")
		if ctx.Debug {
			ctx.glog.EnableLevel("debug")
		}
	})
	return ctx.glog
}

func CtxFromCmdline(cfgPath, logPath string, quiet, debug bool) (*Ctx, error) {
	env := os.Getenv(CfgPathEnv)
	if env != "" {
		cfgPath = env
	}
	cfgRaw, err := ioutil.ReadFile(cfgPath)
	if err != nil {
		return nil, err
	}
	cfg, err := CfgParse(cfgRaw)
	if err != nil {
		return nil, err
	}
	ctx, err := Cfg2Ctx(cfg)
	if err != nil {
		return nil, err
	}
	if logPath == "" {
		env = os.Getenv(CfgLogEnv)
		if env != "" {
			ctx.LogPath = env
		}
	} else {
		ctx.LogPath = logPath
	}
	ctx.Quiet = quiet
	ctx.Debug = debug
	return ctx, nil
}

// NewIdentity builds the session identity. Empty class is looked up by
// the remote address.
func (ctx *Ctx) NewIdentity(user, group string, groups []string, class string, addr net.IP) *Identity {
	if class == "" {
		class = ctx.ClassOf(addr)
	}
	return &Identity{User: user, Group: group, Groups: groups, Class: class}
}
