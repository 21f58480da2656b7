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
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"path"
	"sort"

	"github.com/hjson/hjson-go"
)

const (
	CfgPathEnv = "DISKUSECFG"
	CfgLogEnv  = "DISKUSELOG"
)

var DefaultCfgPath = "/usr/local/etc/diskuse.hjson"

type AnonJSON struct {
	MaxDiskUsage []string `json:"maxdiskusage,omitempty"`
}

type VHostJSON struct {
	MaxDiskUsage []string            `json:"maxdiskusage,omitempty"`
	Anon         map[string]AnonJSON `json:"anon,omitempty"`
}

type CfgJSON struct {
	Log string `json:"log,omitempty"`

	MaxDiskUsage []string             `json:"maxdiskusage,omitempty"`
	Classes      map[string][]string  `json:"classes,omitempty"`
	VHosts       map[string]VHostJSON `json:"vhosts,omitempty"`
}

type VHost struct {
	Name  string
	Rules []*Rule
	// Anonymous login roots and their rules.
	Anon map[string][]*Rule
}

type Class struct {
	Name string
	Nets []*net.IPNet
}

func (c *Class) Contains(ip net.IP) bool {
	for _, n := range c.Nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func CfgParse(data []byte) (*CfgJSON, error) {
	var cfgGeneral map[string]interface{}
	if err := hjson.Unmarshal(data, &cfgGeneral); err != nil {
		return nil, err
	}
	marshaled, err := json.Marshal(cfgGeneral)
	if err != nil {
		return nil, err
	}
	var cfgJSON CfgJSON
	if err = json.Unmarshal(marshaled, &cfgJSON); err != nil {
		return nil, err
	}
	return &cfgJSON, nil
}

func rulesParse(scope string, entries []string) ([]*Rule, error) {
	rules := make([]*Rule, 0, len(entries))
	for i, entry := range entries {
		rule, err := ParseDirectiveLine(entry)
		if err != nil {
			return nil, fmt.Errorf("%s: %s #%d: %w", scope, DirectiveName, i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func NewClass(name string, entries []string) (*Class, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("class %s: no networks", name)
	}
	class := Class{Name: name}
	for _, entry := range entries {
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("class %s: invalid network: %s", name, entry)
			}
			bits := 8 * net.IPv6len
			if ip4 := ip.To4(); ip4 != nil {
				ip = ip4
				bits = 8 * net.IPv4len
			}
			ipNet = &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}
		}
		class.Nets = append(class.Nets, ipNet)
	}
	return &class, nil
}

func Cfg2Ctx(cfgJSON *CfgJSON) (*Ctx, error) {
	global, err := rulesParse("global", cfgJSON.MaxDiskUsage)
	if err != nil {
		return nil, err
	}
	ctx := Ctx{
		Global:  global,
		VHosts:  make(map[string]*VHost, len(cfgJSON.VHosts)),
		LogPath: cfgJSON.Log,
	}
	for name, vhostJSON := range cfgJSON.VHosts {
		if name == "" {
			return nil, errors.New("empty vhost name")
		}
		vhost := VHost{Name: name, Anon: make(map[string][]*Rule)}
		vhost.Rules, err = rulesParse("vhost "+name, vhostJSON.MaxDiskUsage)
		if err != nil {
			return nil, err
		}
		for root, anonJSON := range vhostJSON.Anon {
			if !path.IsAbs(root) {
				return nil, fmt.Errorf("vhost %s: anon root must be absolute: %s", name, root)
			}
			root = path.Clean(root)
			vhost.Anon[root], err = rulesParse(
				"vhost "+name+" anon "+root, anonJSON.MaxDiskUsage,
			)
			if err != nil {
				return nil, err
			}
		}
		ctx.VHosts[name] = &vhost
	}
	names := make([]string, 0, len(cfgJSON.Classes))
	for name := range cfgJSON.Classes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		class, err := NewClass(name, cfgJSON.Classes[name])
		if err != nil {
			return nil, err
		}
		ctx.Classes = append(ctx.Classes, class)
	}
	return &ctx, nil
}
