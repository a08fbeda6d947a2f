package config

const CargoConfigTemplate = `network = "{{ .Network }}"
rpcs = [{{ range $i, $rpc := .Rpcs }}{{ if $i }}, {{ end }}"{{ $rpc }}"{{ end }}]
chain_id = {{ .ChainId }}

poll_interval_ms = {{ .PollIntervalMs }}
rpc_timeout_ms = {{ .RpcTimeoutMs }}
confirmation_depth = {{ .ConfirmationDepth }}
max_poll_attempts = {{ .MaxPollAttempts }}
max_poll_duration_ms = {{ .MaxPollDurationMs }}
completed_cache_size = {{ .CompletedCacheSize }}

estimate_gas = {{ .EstimateGas }}
gas_bump_percent = {{ .GasBumpPercent }}
gas_price_update_interval_ms = {{ .GasPriceUpdateIntervalMs }}
check_receipt = {{ .CheckReceipt }}

db_driver = "{{ .DbDriver }}"
db_path = "{{ .DbPath }}"
db_host = "{{ .DbHost }}"
db_port = {{ .DbPort }}
db_username = "{{ .DbUsername }}"
db_password = "{{ .DbPassword }}"
db_schema = "{{ .DbSchema }}"
server_port = {{ .ServerPort }}
`
