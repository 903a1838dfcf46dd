// Package config loads the sockd HCL configuration.
//
// A file looks like:
//
//	runlevel  = 2
//	log_level = "info"
//
//	syslog {
//	  host = "10.0.0.1"
//	}
//
//	service "ssh@eth0:222/tcp" {
//	  mode      = "nowait"
//	  runlevels = "[2345]"
//	  command   = "/usr/sbin/sshd"
//	  args      = ["-i"]
//	}
//
//	inetd = [
//	  "time/udp wait [2345] /usr/sbin/in.timed",
//	]
//
// Expressions may read the environment through the env object, e.g.
// command = "${env.SBIN}/sshd".
package config
