package vfs

import (
	"fmt"
	"strings"
	"time"
)

// SystemInfo describes the simulated machine surfaced through /proc.
type SystemInfo struct {
	Hostname      string
	KernelName    string
	KernelRelease string
	KernelVersion string
	Machine       string
	BootTime      time.Time
	MemTotalKB    int64
}

// DefaultSystemInfo is used until a caller sets FS.System.
var DefaultSystemInfo = SystemInfo{
	Hostname:      "localhost",
	KernelName:    "Linux",
	KernelRelease: "5.10.0-21-amd64",
	KernelVersion: "#1 SMP Debian 5.10.162-1 (2023-01-21)",
	Machine:       "x86_64",
	MemTotalKB:    4030000,
}

type procFile struct {
	Name      string
	Generator func(info SystemInfo, now time.Time) string
}

var procFiles = []procFile{
	{Name: "cpuinfo", Generator: func(SystemInfo, time.Time) string {
		return `processor	: 0
vendor_id	: GenuineIntel
cpu family	: 6
model		: 45
model name	: unknown
stepping	: unknown
cpu MHz		: 1234.588
fpu		: yes
fpu_exception	: yes
cpuid level	: 13
wp		: yes
flags		: fpu vme de pse tsc msr pae mce cx8 apic sep mtrr pge mca cmov pat pse36 clflush mmx fxsr sse sse2 ss ht syscall nx lm
bogomips	: 1234.59
clflush size	: 64
cache_alignment	: 64
address sizes	: 46 bits physical, 48 bits virtual
`
	}},
	{Name: "loadavg", Generator: func(SystemInfo, time.Time) string {
		return "0.00 0.01 0.05 1/87 1024\n"
	}},
	{Name: "meminfo", Generator: func(info SystemInfo, _ time.Time) string {
		var sb strings.Builder
		free := info.MemTotalKB / 2
		fmt.Fprintf(&sb, "MemTotal:       %8d kB\n", info.MemTotalKB)
		fmt.Fprintf(&sb, "MemFree:        %8d kB\n", free)
		fmt.Fprintf(&sb, "MemAvailable:   %8d kB\n", free+info.MemTotalKB/8)
		fmt.Fprintf(&sb, "SwapTotal:      %8d kB\n", 0)
		fmt.Fprintf(&sb, "SwapFree:       %8d kB\n", 0)
		return sb.String()
	}},
	{Name: "uptime", Generator: func(info SystemInfo, now time.Time) string {
		uptime := now.Sub(info.BootTime).Seconds()
		// [seconds running] [seconds idle]
		return fmt.Sprintf("%0.2f 0.00\n", uptime)
	}},
	{Name: "version", Generator: func(info SystemInfo, _ time.Time) string {
		return fmt.Sprintf("%s version %s %s\n", info.KernelName, info.KernelRelease, info.KernelVersion)
	}},
}

// procVolume generates read-only files describing the system.
type procVolume struct {
	fs *FS
}

func (p *procVolume) find(rel string) (*procFile, error) {
	name := strings.TrimPrefix(rel, "/")
	if strings.Contains(name, "/") {
		if p.findFile(name[:strings.Index(name, "/")]) != nil {
			return nil, ErrNotDir
		}
		return nil, ErrNotExist
	}
	if pf := p.findFile(name); pf != nil {
		return pf, nil
	}
	return nil, ErrNotExist
}

func (p *procVolume) findFile(name string) *procFile {
	for i := range procFiles {
		if procFiles[i].Name == name {
			return &procFiles[i]
		}
	}
	return nil
}

func (p *procVolume) node(pf *procFile) *Node {
	now := p.fs.Now()
	return newFileNode(pf.Name, "r--r--r--", RootUser, RootUser, pf.Generator(p.fs.System, now), now)
}

func (p *procVolume) lookup(rel string) (*Node, error) {
	if rel == "/" {
		return newDirNode("proc", "r-xr-xr-x", RootUser, RootUser, p.fs.System.BootTime), nil
	}
	pf, err := p.find(rel)
	if err != nil {
		return nil, err
	}
	return p.node(pf), nil
}

func (p *procVolume) read(rel string) (string, error) {
	if rel == "/" {
		return "", ErrIsDir
	}
	pf, err := p.find(rel)
	if err != nil {
		return "", err
	}
	return pf.Generator(p.fs.System, p.fs.Now()), nil
}

func (p *procVolume) write(string, string) error {
	return ErrPermission
}

func (p *procVolume) list(rel string) ([]*Node, error) {
	if rel != "/" {
		if _, err := p.find(rel); err != nil {
			return nil, err
		}
		return nil, ErrNotDir
	}

	out := make([]*Node, 0, len(procFiles))
	for i := range procFiles {
		out = append(out, p.node(&procFiles[i]))
	}
	return out, nil
}
