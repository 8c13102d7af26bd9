// Package dissector adapts an external capture-analysis binary (tshark by
// default) into the ports.Dissector contract: a lazy stream of normalized
// 802.11 frame records (management, action and data frames).
package dissector

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/steeraudit/bandsteer/internal/core/domain"
	"github.com/steeraudit/bandsteer/internal/core/ports"
)

// execCmd allows mocking exec.CommandContext in tests.
var execCmd = exec.CommandContext

// fields lists the tshark -e arguments pulled per packet. Order matches the
// index positions read in decodeFields.
var fields = []string{
	"frame.time_epoch",
	"wlan.fc.type_subtype",
	"wlan.bssid",
	"wlan.sa",
	"wlan.da",
	"radiotap.channel.freq",
	"radiotap.dbm_antsignal",
	"wlan.ssid",
	"wlan.fixed.reason_code",
	"wlan.fixed.category_code",
	"wlan.fixed.action_code",
	"wlan.fixed.status_code",
	"frame.len",
	"frame.protocols",
}

// TsharkDissector shells out to tshark in tab-separated-fields mode and
// streams one CaptureRecord per output line, never buffering the capture.
type TsharkDissector struct {
	BinaryPath     string
	TimeoutSeconds int
}

// NewTsharkDissector builds a dissector bound to the given binary and
// per-run timeout.
func NewTsharkDissector(binaryPath string, timeoutSeconds int) *TsharkDissector {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 300
	}
	return &TsharkDissector{BinaryPath: binaryPath, TimeoutSeconds: timeoutSeconds}
}

func (d *TsharkDissector) args(capturePath string) []string {
	args := []string{
		"-r", capturePath,
		"-Y", "wlan.fc.type_subtype", // any frame that carries a type/subtype field
		"-T", "fields",
		"-E", "separator=\t",
		"-E", "occurrence=f",
	}
	for _, f := range fields {
		args = append(args, "-e", f)
	}
	return args
}

// Run starts the dissector subprocess and returns a stream over its output.
// The subprocess is killed if ctx is cancelled or the configured timeout
// elapses first.
func (d *TsharkDissector) Run(ctx context.Context, capturePath string) (ports.RecordStream, error) {
	if _, err := exec.LookPath(d.BinaryPath); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDissectorUnavailable, d.BinaryPath, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(d.TimeoutSeconds)*time.Second)

	cmd := execCmd(runCtx, d.BinaryPath, d.args(capturePath)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, &domain.DissectorError{Op: "stdout pipe", Err: err}
	}
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, &domain.DissectorError{Op: "start", Err: err}
	}

	return &tsharkStream{
		cmd:       cmd,
		scanner:   bufio.NewScanner(stdout),
		stderr:    &stderr,
		cancel:    cancel,
		runCtx:    runCtx,
	}, nil
}

// TotalFrameCount runs a lightweight tshark pass counting every frame in the
// capture, 802.11 or not, for the analysis artifact's total_packets field.
func (d *TsharkDissector) TotalFrameCount(ctx context.Context, capturePath string) (int, error) {
	if _, err := exec.LookPath(d.BinaryPath); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrDissectorUnavailable, d.BinaryPath, err)
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(d.TimeoutSeconds)*time.Second)
	defer cancel()

	cmd := execCmd(runCtx, d.BinaryPath, "-r", capturePath, "-T", "fields", "-e", "frame.number")
	var stderr strings.Builder
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, &domain.DissectorError{Op: "stdout pipe", Err: err}
	}
	if err := cmd.Start(); err != nil {
		return 0, &domain.DissectorError{Op: "start", Err: err}
	}

	count := 0
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			count++
		}
	}

	if err := cmd.Wait(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return 0, fmt.Errorf("%w", domain.ErrDissectorTimeout)
		}
		return 0, &domain.DissectorError{Op: "exit", Stderr: stderr.String(), Err: err}
	}
	return count, nil
}

type tsharkStream struct {
	cmd     *exec.Cmd
	scanner *bufio.Scanner
	stderr  *strings.Builder
	cancel  context.CancelFunc
	runCtx  context.Context
	closed  bool
}

func (s *tsharkStream) Next(ctx context.Context) (domain.CaptureRecord, bool, error) {
	for s.scanner.Scan() {
		line := s.scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		rec, ok := decodeFields(line)
		if !ok {
			continue
		}
		return rec, true, nil
	}

	if err := s.scanner.Err(); err != nil {
		return domain.CaptureRecord{}, false, &domain.DissectorError{Op: "read output", Stderr: s.stderr.String(), Err: err}
	}

	waitErr := s.cmd.Wait()
	if s.runCtx.Err() == context.DeadlineExceeded {
		return domain.CaptureRecord{}, false, fmt.Errorf("%w after %v", domain.ErrDissectorTimeout, s.cmd.ProcessState)
	}
	if waitErr != nil {
		return domain.CaptureRecord{}, false, &domain.DissectorError{Op: "exit", Stderr: s.stderr.String(), Err: waitErr}
	}
	return domain.CaptureRecord{}, false, nil
}

func (s *tsharkStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	if s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	return nil
}

// decodeFields parses one tab-separated tshark output line into a
// CaptureRecord. Lines with fewer columns than requested are skipped
// (ok=false) rather than aborting the whole stream; every other line,
// whatever its frame type, yields a record.
func decodeFields(line string) (domain.CaptureRecord, bool) {
	cols := strings.Split(line, "\t")
	if len(cols) < len(fields) {
		return domain.CaptureRecord{}, false
	}

	rec := domain.CaptureRecord{
		Timestamp:     parseFloat(cols[0]),
		Subtype:       parseIntMod256(cols[1]),
		BSSID:         cols[2],
		SA:            cols[3],
		DA:            cols[4],
		FrequencyMHz:  parseFreqKHzToMHz(cols[5]),
		RSSI:          parseInt(cols[6]),
		SSID:          cols[7],
		ReasonCode:    parseInt(cols[8]),
		CategoryCode:  parseInt(cols[9]),
		ActionCode:    parseInt(cols[10]),
		FrameLength:   parseInt(cols[12]),
		ProtocolStack: cols[13],
	}
	if v, ok := parseOptInt(cols[11]); ok {
		rec.AssocStatusCode = &v
		if rec.CategoryCode == domain.CategoryWNM {
			rec.BTMStatusCode = &v
		}
	}
	return rec, true
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// tshark may emit hex fixed-codes as "0x0000"
	if strings.HasPrefix(s, "0x") {
		n, err := strconv.ParseInt(s[2:], 16, 64)
		if err == nil {
			return int(n)
		}
	}
	n, _ := strconv.Atoi(s)
	return n
}

func parseOptInt(s string) (int, bool) {
	if strings.TrimSpace(s) == "" {
		return 0, false
	}
	return parseInt(s), true
}

// parseIntMod256 normalizes wlan.fc.type_subtype: tshark reports the full
// type+subtype value, and the whole combined byte is kept (data subtypes
// such as 0x20/0x28 depend on the type bits); the field can overflow a byte
// boundary for some capture encapsulations, hence mod 256.
func parseIntMod256(s string) int {
	return parseInt(s) % 256
}

// parseFreqKHzToMHz converts radiotap.channel.freq to whole MHz; tshark
// already reports MHz for this field, but some capture pipelines emit kHz
// for consistency with other radiotap frequency fields, so values clearly
// out of the 2.4/5 GHz ranges are treated as kHz and divided down.
func parseFreqKHzToMHz(s string) int {
	v := parseInt(s)
	if v > 10000 {
		return v / 1000
	}
	return v
}
