package port

// wellKnownServices 常见端口与服务名的静态映射
var wellKnownServices = map[int]string{
	21:    "FTP",
	22:    "SSH",
	23:    "Telnet",
	25:    "SMTP",
	53:    "DNS",
	80:    "HTTP",
	110:   "POP3",
	143:   "IMAP",
	443:   "HTTPS",
	445:   "SMB",
	993:   "IMAPS",
	995:   "POP3S",
	3306:  "MySQL",
	3389:  "RDP",
	5432:  "PostgreSQL",
	6379:  "Redis",
	8080:  "HTTP-Alt",
	8443:  "HTTPS-Alt",
	9200:  "Elasticsearch",
	27017: "MongoDB",
}

// LookupService 返回端口对应的服务名，不在表中时返回 nil
// 每次返回新的指针，调用方可以放心持有
func LookupService(port int) *string {
	name, ok := wellKnownServices[port]
	if !ok {
		return nil
	}
	return &name
}
