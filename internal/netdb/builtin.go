package netdb

// Fallback entries for systems without /etc/services or /etc/protocols
// (minimal initramfs and container images).

func builtinServices() []Servent {
	return []Servent{
		{Name: "echo", Port: 7, Proto: "tcp"},
		{Name: "echo", Port: 7, Proto: "udp"},
		{Name: "discard", Aliases: []string{"sink", "null"}, Port: 9, Proto: "tcp"},
		{Name: "discard", Aliases: []string{"sink", "null"}, Port: 9, Proto: "udp"},
		{Name: "daytime", Port: 13, Proto: "tcp"},
		{Name: "daytime", Port: 13, Proto: "udp"},
		{Name: "chargen", Aliases: []string{"ttytst", "source"}, Port: 19, Proto: "tcp"},
		{Name: "chargen", Aliases: []string{"ttytst", "source"}, Port: 19, Proto: "udp"},
		{Name: "ftp", Port: 21, Proto: "tcp"},
		{Name: "ssh", Port: 22, Proto: "tcp"},
		{Name: "telnet", Port: 23, Proto: "tcp"},
		{Name: "time", Aliases: []string{"timserver"}, Port: 37, Proto: "tcp"},
		{Name: "time", Aliases: []string{"timserver"}, Port: 37, Proto: "udp"},
		{Name: "tftp", Port: 69, Proto: "udp"},
		{Name: "finger", Port: 79, Proto: "tcp"},
		{Name: "http", Aliases: []string{"www"}, Port: 80, Proto: "tcp"},
		{Name: "pop3", Aliases: []string{"pop-3"}, Port: 110, Proto: "tcp"},
		{Name: "auth", Aliases: []string{"authentication", "tap", "ident"}, Port: 113, Proto: "tcp"},
		{Name: "ntp", Port: 123, Proto: "udp"},
		{Name: "imap2", Aliases: []string{"imap"}, Port: 143, Proto: "tcp"},
		{Name: "snmp", Port: 161, Proto: "udp"},
		{Name: "rsync", Port: 873, Proto: "tcp"},
	}
}

func builtinProtocols() []Protoent {
	return []Protoent{
		{Name: "ip", Aliases: []string{"IP"}, Number: 0},
		{Name: "icmp", Aliases: []string{"ICMP"}, Number: 1},
		{Name: "tcp", Aliases: []string{"TCP"}, Number: 6},
		{Name: "udp", Aliases: []string{"UDP"}, Number: 17},
		{Name: "sctp", Aliases: []string{"SCTP"}, Number: 132},
		{Name: "udplite", Aliases: []string{"UDPLite"}, Number: 136},
	}
}
