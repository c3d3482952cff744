package deployment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/imamik/paxosfleet/internal/config"
)

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// goEnv prefixes a command with the GOPATH build environment of dir.
func goEnv(dir string) string {
	return fmt.Sprintf("export PATH=$PATH:/usr/local/go/bin && export GOPATH=$HOME/%s", dir)
}

func probeCommand(setupScript string) string {
	return fmt.Sprintf("test -x %s", setupScript)
}

func installCommand(dir string) string {
	return fmt.Sprintf("%s && cd $HOME/%s && go clean && go install master && go install server && go install client", goEnv(dir), dir)
}

func masterCommand(dir string, serverIPs []string) string {
	return fmt.Sprintf("cd %s && nohup bin/master -N %d -ips %s > moutput.txt 2>&1 &",
		dir, len(serverIPs), strings.Join(serverIPs, ","))
}

func serverCommand(dir string, port int, masterAddr, addr string, epaxos bool) string {
	flags := fmt.Sprintf("-port %d -maddr %s -addr %s", port, masterAddr, addr)
	if epaxos {
		flags += " -e"
	}
	return fmt.Sprintf("cd %s && nohup bin/server %s > output.txt 2>&1 &", dir, flags)
}

func clientFlags(masterAddr string, b config.BenchmarkConfig, index int) string {
	flags := []string{
		"-maddr " + masterAddr,
		fmt.Sprintf("-T %d", b.Clients),
		"-writes " + formatFloat(b.WriteFraction),
		fmt.Sprintf("-c %d -theta %s", b.Conflicts, formatFloat(b.Theta)),
	}
	if b.Locality {
		flags = append(flags, fmt.Sprintf("-l %d", index))
	}
	return strings.Join(flags, " ")
}

func clientCommand(dir, masterAddr string, b config.BenchmarkConfig, index int) string {
	return fmt.Sprintf("cd %s && nohup bin/client %s > output.txt 2>&1 &", dir, clientFlags(masterAddr, b, index))
}

func metricsCommand(dir string, b config.BenchmarkConfig) string {
	cmd := fmt.Sprintf("python3 %s/%s", dir, b.MetricsScript)
	if secs := int(b.Duration.Seconds()); secs > 0 {
		cmd = fmt.Sprintf("sleep %d && %s", secs, cmd)
	}
	return cmd
}

func stopCommand(binary string) string {
	return fmt.Sprintf("kill $(pidof bin/%s)", binary)
}
