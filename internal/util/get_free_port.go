package util

import (
	"fmt"
	"net"
)

const maxOffset = 100

// GetFreePort returns defaultPort if it can be bound, otherwise the nearest
// free port above it, otherwise whatever the kernel hands out.
func GetFreePort(defaultPort int) (int, error) {
	if port, err := checkPortAvailability(defaultPort); err == nil {
		return port, nil
	}

	for offset := 1; offset <= maxOffset; offset++ {
		port := defaultPort + offset
		if port > 65535 {
			break
		}
		if port, err := checkPortAvailability(port); err == nil {
			return port, nil
		}
	}

	return getRandomFreePort()
}

func checkPortAvailability(port int) (int, error) {
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return 0, err
	}
	l.Close()
	return port, nil
}

func getRandomFreePort() (port int, err error) {
	// Asks the kernel for a free open port that is ready to use.
	var a *net.TCPAddr
	if a, err = net.ResolveTCPAddr("tcp", "localhost:0"); err == nil {
		var l *net.TCPListener
		if l, err = net.ListenTCP("tcp", a); err == nil {
			defer l.Close()
			return l.Addr().(*net.TCPAddr).Port, nil
		}
	}
	return
}
