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
	"net"
	"strings"
	"testing"
)

const testCfg = `
{
  # comments are allowed
  log: "/var/log/diskuse.log"
  maxdiskusage: [
    "90 user alice,bob"
    "95"
  ]
  classes: {
    internal: ["10.0.0.0/8", "127.0.0.1"]
    dmz: ["192.0.2.0/24"]
  }
  vhosts: {
    "ftp.example.net": {
      maxdiskusage: ["80 class dmz"]
      anon: {
        "/srv/ftp": {
          maxdiskusage: ["none"]
        }
      }
    }
  }
}
`

func testCtx(t *testing.T) *Ctx {
	if !HaveStatfs {
		t.Skip("no statfs")
	}
	cfg, err := CfgParse([]byte(testCfg))
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := Cfg2Ctx(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return ctx
}

func rulesStrings(rules []*Rule) string {
	ss := make([]string, 0, len(rules))
	for _, rule := range rules {
		ss = append(ss, rule.String())
	}
	return strings.Join(ss, "|")
}

func TestCfgRulesOrder(t *testing.T) {
	ctx := testCtx(t)
	if ctx.LogPath != "/var/log/diskuse.log" {
		t.Errorf("log: %s", ctx.LogPath)
	}
	for _, c := range []struct {
		vhost, anon, expected string
	}{
		{"", "", "90 user alice,bob|95"},
		{"unknown", "/srv/ftp", "90 user alice,bob|95"},
		{"ftp.example.net", "", "80 class dmz|90 user alice,bob|95"},
		{"ftp.example.net", "/srv/ftp/", "none|80 class dmz|90 user alice,bob|95"},
	} {
		if got := rulesStrings(ctx.Rules(c.vhost, c.anon)); got != c.expected {
			t.Errorf("%s %s: %s", c.vhost, c.anon, got)
		}
	}
}

func TestCfgClasses(t *testing.T) {
	ctx := testCtx(t)
	for addr, expected := range map[string]string{
		"10.1.2.3":    "internal",
		"127.0.0.1":   "internal",
		"127.0.0.2":   "",
		"192.0.2.200": "dmz",
		"2001:db8::1": "",
	} {
		if got := ctx.ClassOf(net.ParseIP(addr)); got != expected {
			t.Errorf("%s: %q != %q", addr, got, expected)
		}
	}
	if ctx.ClassOf(nil) != "" {
		t.Error("nil address must be classless")
	}
	id := ctx.NewIdentity("carol", "users", nil, "", net.ParseIP("192.0.2.1"))
	if id.Class != "dmz" {
		t.Errorf("identity class %q", id.Class)
	}
}

func TestCfgSessionScenario(t *testing.T) {
	ctx := testCtx(t)
	ctx.LogPath = ""
	ctx.Quiet = true
	fs := &fakeFS{stat: FSStat{Blocks: 100, Bavail: 12}}

	for _, c := range []struct {
		id     *Identity
		anon   string
		bavail uint64
		denied bool
	}{
		{&Identity{User: "alice"}, "", 12, false},
		{&Identity{User: "alice"}, "", 8, true},
		{&Identity{User: "carol", Class: "dmz"}, "", 12, true},
		{&Identity{User: "carol"}, "", 4, true},
		{&Identity{User: "carol"}, "", 6, false},
		{&Identity{User: "alice"}, "/srv/ftp", 0, false},
	} {
		fs.stat.Bavail = c.bavail
		sess := ctx.NewSession(c.id, "ftp.example.net", c.anon)
		sess.Stat = fs.Stat
		if res := sess.PreCmd("STOR", "/home/f"); res.Denied != c.denied {
			t.Errorf("%s %s %d%% free: %s", c.id.User, c.anon, c.bavail, res)
		}
	}
}

func TestCfgErrors(t *testing.T) {
	if !HaveStatfs {
		t.Skip("no statfs")
	}
	for _, c := range []struct {
		cfg, errPart string
	}{
		{`{maxdiskusage: ["100"]}`, "global"},
		{`{maxdiskusage: ["90 host x"]}`, "unknown classifier"},
		{`{vhosts: {a: {maxdiskusage: ["abc"]}}}`, "vhost a"},
		{`{vhosts: {a: {anon: {"srv": {maxdiskusage: ["90"]}}}}}`, "absolute"},
		{`{vhosts: {a: {anon: {"/srv": {maxdiskusage: ["90 user"]}}}}}`, "anon /srv"},
		{`{classes: {a: ["not-an-ip"]}}`, "class a"},
		{`{classes: {a: []}}`, "no networks"},
	} {
		cfg, err := CfgParse([]byte(c.cfg))
		if err != nil {
			t.Fatalf("%s: %v", c.cfg, err)
		}
		_, err = Cfg2Ctx(cfg)
		if err == nil || !strings.Contains(err.Error(), c.errPart) {
			t.Errorf("%s: %v", c.cfg, err)
		}
	}
}
