package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"time"
)

// waitfor blocks until a TCP endpoint accepts connections. It is used
// by the compose setup to hold the server back until its backing
// services are reachable.
func main() {
	host := flag.String("host", "localhost", "the host to connect to")
	port := flag.String("port", "27017", "the port to connect to")
	attempts := flag.Int("attempts", 20, "how many times to retry before giving up")
	timeout := 10 * time.Second

	flag.Parse()

	for i := 0; i < *attempts; i++ {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort(*host, *port), timeout)
		if err == nil {
			conn.Close()
			fmt.Printf("TCP connection available on [%s:%s]\n", *host, *port)
			return
		}

		fmt.Printf("connection not yet available on [%s:%s]: %v\n", *host, *port, err)
		time.Sleep(1 * time.Second)
	}
	log.Panicf("could not open TCP connection on [%s:%s] after %d attempts.", *host, *port, *attempts)
}
