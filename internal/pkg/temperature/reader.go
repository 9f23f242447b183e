package temperature

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/anicoll/home-bridge/internal/pkg/config"
)

const slaveFile = "w1_slave"

var readingLine = regexp.MustCompile(`^(?:[0-9a-f]{2} )+t=(-?[0-9]+)$`)

// Reader reads DS18B20 one-wire sensors through the w1 sysfs interface.
type Reader struct {
	devicesPath string
	readFile    func(name string) ([]byte, error)
}

func NewReader(cfg *config.TemperatureConfig) *Reader {
	return &Reader{
		devicesPath: cfg.DevicesPath,
		readFile:    os.ReadFile,
	}
}

// Read returns the temperature in degrees Celsius. A reading that failed its
// CRC check or is malformed yields nil without an error.
func (r *Reader) Read(deviceID string) (*float64, error) {
	data, err := r.readFile(filepath.Join(r.devicesPath, filepath.Base(deviceID), slaveFile))
	if err != nil {
		return nil, err
	}
	return parseSlave(string(data)), nil
}

func parseSlave(content string) *float64 {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 2 || !strings.HasSuffix(lines[0], " YES") {
		return nil
	}
	match := readingLine.FindStringSubmatch(lines[1])
	if match == nil {
		return nil
	}
	milli, err := strconv.Atoi(match[1])
	if err != nil {
		return nil
	}
	celsius := float64(milli) / 1000
	return &celsius
}
