package docstream

import (
	"io"
	"log"
	"net"
	"os"

	"github.com/jlaffaye/ftp"
)

// fetchRemote downloads an FTP-hosted document into a process-local temp
// file. The temp file is removed by the returned cleanup on every exit path;
// callers never own it.
func (s *Streamer) fetchRemote(remotePath string) (*source, *StreamError) {
	cfg := s.storage.FTP
	if cfg.Host == "" {
		return nil, notFoundf("ftp storage is not configured")
	}

	opts := []ftp.DialOption{ftp.DialWithTimeout(cfg.Timeout)}
	if cfg.DisableEPSV {
		opts = append(opts, ftp.DialWithDisabledEPSV(true))
	}

	conn, err := ftp.Dial(net.JoinHostPort(cfg.Host, cfg.Port), opts...)
	if err != nil {
		log.Printf("❌ FTP dial failed (%s:%s): %v", cfg.Host, cfg.Port, err)
		return nil, notFoundf("document storage unreachable")
	}
	defer conn.Quit()

	if err := conn.Login(cfg.Username, cfg.Password); err != nil {
		log.Printf("❌ FTP login failed: %v", err)
		return nil, notFoundf("document storage unreachable")
	}

	resp, err := conn.Retr(remotePath)
	if err != nil {
		return nil, notFoundf("document file not found")
	}
	defer resp.Close()

	tmp, err := os.CreateTemp("", "claimdoc-*")
	if err != nil {
		return nil, notFoundf("temporary storage unavailable")
	}
	cleanup := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	size, err := io.Copy(tmp, resp)
	if err != nil {
		cleanup()
		return nil, notFoundf("document transfer failed")
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, notFoundf("document transfer failed")
	}

	return &source{
		file:    tmp,
		size:    size,
		cleanup: cleanup,
	}, nil
}
