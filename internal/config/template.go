package config

// DefaultConfigYAML returns the commented config written by `trustwatch init`.
// Decoding it over DefaultConfig leaves the defaults unchanged.
func DefaultConfigYAML() string {
	return `# trustwatch configuration
# Generated by: trustwatch init
#
# Per cycle: collect signals -> score -> sensitive-file check ->
# escalation (CLEAN -> WARNED -> BLOCKED) -> audit row -> alert.

# Employee whose session is monitored. Defaults to the current OS user.
# Override with TRUSTWATCH_EMPLOYEE.
# employee: jdoe

# Recipient of warning and block alerts. Override with TRUSTWATCH_ADMIN_EMAIL.
# admin_email: security@example.com

# A cycle triggers escalation when trust < trust_threshold or any
# suspicion reason is present.
trust_threshold: 50

# Whole-word, case-insensitive. Each match costs 10 email points.
keywords:
  - password
  - hack
  - leak
  - resign
  - confidential
  - cheat
  - login
  - otp

# Activity outside [start, end) costs 20 trust points.
# start > end wraps past midnight; start == end means always in hours.
office_hours:
  start: "09:00"
  end: "18:00"

# Files whose access time is watched. An access raises file-access:<name>.
sensitive_files: []

poll_interval: 1s
max_messages: 5

# External detector that captures a frame and prints the face count.
presence:
  command: ""

mail:
  backend: gmail            # gmail | spool
  # from: monitor@example.com
  # credentials_file: ~/.trustwatch/credentials.json
  # token_file: ~/.trustwatch/token.json
  # spool:
  #   inbox: ~/.trustwatch/spool/inbox
  #   outbox: ~/.trustwatch/spool/outbox

warnings:
  backend: csv              # csv | sqlite
  # path: ~/.trustwatch/warnings.csv

# audit_log: ~/.trustwatch/audit.csv

alerts:
  file_access_immediate: true
  breaker:
    max_failures: 3
    cooldown: 1m
  webhooks: []
  # - url: https://hooks.slack.com/services/...
  #   format: slack         # generic | slack
  #   classes: [warning, block]

log:
  level: info               # debug | info | warn | error
  format: text              # text | json

# metrics_addr: 127.0.0.1:9464
`
}
