package deployment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/imamik/paxosfleet/internal/config"
)

func benchmark() config.BenchmarkConfig {
	cfg := config.Config{Benchmark: config.DefaultBenchmark()}
	cfg.ApplyDefaults()
	return cfg.Benchmark
}

func TestInstallCommand(t *testing.T) {
	assert.Equal(t,
		"export PATH=$PATH:/usr/local/go/bin && export GOPATH=$HOME/epaxos && cd $HOME/epaxos && go clean && go install master && go install server && go install client",
		installCommand("epaxos"))
}

func TestMasterCommand(t *testing.T) {
	assert.Equal(t,
		"cd epaxos && nohup bin/master -N 3 -ips 10.0.0.2,10.0.0.3,10.0.0.4 > moutput.txt 2>&1 &",
		masterCommand("epaxos", []string{"10.0.0.2", "10.0.0.3", "10.0.0.4"}))
}

func TestServerCommand(t *testing.T) {
	assert.Equal(t,
		"cd epaxos && nohup bin/server -port 7072 -maddr 10.0.0.1 -addr 10.0.0.3 -e > output.txt 2>&1 &",
		serverCommand("epaxos", 7072, "10.0.0.1", "10.0.0.3", true))
	assert.NotContains(t, serverCommand("epaxos", 7070, "m", "a", false), "-e")
}

func TestClientCommand(t *testing.T) {
	b := benchmark()
	assert.Equal(t,
		"cd epaxos && nohup bin/client -maddr 10.0.0.1 -T 10 -writes 0.5 -c -1 -theta 0.9 > output.txt 2>&1 &",
		clientCommand("epaxos", "10.0.0.1", b, 4))

	b.Locality = true
	b.WriteFraction = 0.25
	assert.Contains(t, clientCommand("epaxos", "10.0.0.1", b, 4), "-writes 0.25 -c -1 -theta 0.9 -l 4")
}

func TestMetricsCommand(t *testing.T) {
	b := benchmark()
	assert.Equal(t, "python3 epaxos/scripts/client_metrics.py", metricsCommand("epaxos", b))

	b.Duration = 90 * time.Second
	assert.Equal(t, "sleep 90 && python3 epaxos/scripts/client_metrics.py", metricsCommand("epaxos", b))
}

func TestProbeAndStopCommands(t *testing.T) {
	assert.Equal(t, "test -x /usr/local/bin/setup_epaxos.sh", probeCommand("/usr/local/bin/setup_epaxos.sh"))
	assert.Equal(t, "kill $(pidof bin/client)", stopCommand("client"))
}

func TestRenderBootstrap(t *testing.T) {
	out, err := renderBootstrap(bootstrapData{
		Username:    "epaxos",
		GoVersion:   "1.11.2",
		SetupScript: "/usr/local/bin/setup_epaxos.sh",
		RemoteDir:   "epaxos",
	})
	assert.NoError(t, err)
	assert.Contains(t, out, "useradd -m -s /bin/bash epaxos")
	assert.Contains(t, out, "go1.11.2.linux-amd64.tar.gz")
	assert.Contains(t, out, "export GOPATH=$HOME/epaxos")
	assert.Contains(t, out, "cat << 'SETUP' > /usr/local/bin/setup_epaxos.sh")
	assert.Contains(t, out, "go get -u github.com/VividCortex/ewma")
	assert.NotContains(t, out, "{{")
}
