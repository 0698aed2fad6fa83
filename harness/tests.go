// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	testSkeleton   = "skeleton"
	testICMP       = "icmp"
	testDNS        = "dns"
	testThroughput = "throughput"
	testTCPPing    = "tcpping"
	testHTTP       = "http"
	testUDPStream  = "udpstream"
)

// Result format versions written by current clients.
const (
	SkeletonVersion   = 2014020300
	ICMPVersion       = 2014020300
	DNSVersion        = 2016012800
	ThroughputVersion = 2014073000
	TCPPingVersion    = 2015071500
	HTTPVersion       = 2014051500
	UDPStreamVersion  = 2016042600
)

func builtinTests() []Test {
	return []Test{
		{Name: testSkeleton, ID: 1, Version: SkeletonVersion, Decode: decodeBody[SkeletonResult]},
		{Name: testICMP, ID: 2, Version: ICMPVersion, Decode: decodeBody[ICMPResult]},
		{Name: testDNS, ID: 4, Version: DNSVersion, Decode: decodeBody[DNSResult]},
		{Name: testThroughput, ID: 5, Version: ThroughputVersion, Since: "0.3.0", Decode: decodeBody[ThroughputResult]},
		{Name: testTCPPing, ID: 6, Version: TCPPingVersion, Since: "0.4.0", Decode: decodeBody[TCPPingResult]},
		{Name: testHTTP, ID: 7, Version: HTTPVersion, Since: "0.3.0", Decode: decodeBody[HTTPResult]},
		{Name: testUDPStream, ID: 8, Version: UDPStreamVersion, Since: "0.6.0", Decode: decodeBody[UDPStreamResult]},
	}
}

func decodeBody[T Result](data json.RawMessage) (Result, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: empty body", errMalformedResult)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var body T
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedResult, err)
	}

	return body, nil
}

type SkeletonResult struct {
	Valid uint32 `json:"valid"`
}

func (r SkeletonResult) Summary() string {
	return fmt.Sprintf("Result: got %d address(es) of known family (IPv4/IPv6)", r.Valid)
}

// ICMPTarget is one echo exchange. RTT is in microseconds and nil when no
// reply arrived.
type ICMPTarget struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	RTT       *int64 `json:"rtt,omitempty"`
	TTL       int    `json:"ttl,omitempty"`
	ErrorType int    `json:"error_type,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

type ICMPResult struct {
	PacketSize int          `json:"packet_size"`
	Random     bool         `json:"random"`
	DSCP       int          `json:"dscp,omitempty"`
	Targets    []ICMPTarget `json:"targets"`
}

func (r ICMPResult) Summary() string {
	rtts := make([]*int64, 0, len(r.Targets))
	for _, target := range r.Targets {
		rtts = append(rtts, target.RTT)
	}

	return fmt.Sprintf("icmp: %d byte packets, %s", r.PacketSize, rttSummary(rtts))
}

type DNSTarget struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	RTT          *int64 `json:"rtt,omitempty"`
	QueryLen     int    `json:"query_len"`
	ResponseSize int    `json:"response_size,omitempty"`
	TotalAnswer  int    `json:"total_answer,omitempty"`
	Rcode        int    `json:"rcode,omitempty"`
}

type DNSResult struct {
	Query          string      `json:"query"`
	QueryType      string      `json:"query_type"`
	QueryClass     string      `json:"query_class"`
	UDPPayloadSize int         `json:"udp_payload_size,omitempty"`
	Recurse        bool        `json:"recurse"`
	DNSSEC         bool        `json:"dnssec"`
	NSID           bool        `json:"nsid"`
	Targets        []DNSTarget `json:"targets"`
}

func (r DNSResult) Summary() string {
	rtts := make([]*int64, 0, len(r.Targets))
	answers := 0
	for _, target := range r.Targets {
		rtts = append(rtts, target.RTT)
		answers += target.TotalAnswer
	}

	return fmt.Sprintf("dns: %s %s %s, %d answer(s), %s",
		r.Query, r.QueryClass, r.QueryType, answers, rttSummary(rtts))
}

type ThroughputReport struct {
	Direction string `json:"direction"`
	// Duration is in nanoseconds.
	Duration int64  `json:"duration"`
	Bytes    uint64 `json:"bytes"`
}

type ThroughputResult struct {
	Target   string             `json:"target"`
	Address  string             `json:"address"`
	Schedule string             `json:"schedule,omitempty"`
	Results  []ThroughputReport `json:"results"`
}

func (r ThroughputResult) Summary() string {
	parts := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		d := time.Duration(res.Duration)
		parts = append(parts, fmt.Sprintf("%s %d bytes in %s (%.2f Mbps)",
			res.Direction, res.Bytes, d, mbps(res.Bytes, d)))
	}
	if len(parts) == 0 {
		parts = append(parts, "no transfers")
	}

	return fmt.Sprintf("throughput: %s: %s", r.Target, strings.Join(parts, ", "))
}

type TCPPingTarget struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	RTT     *int64 `json:"rtt,omitempty"`
	// Reply is the reply flag seen, 1 for SYN/ACK and 2 for RST.
	Reply int `json:"reply,omitempty"`
}

type TCPPingResult struct {
	Port       int             `json:"port"`
	PacketSize int             `json:"packet_size"`
	Random     bool            `json:"random"`
	Targets    []TCPPingTarget `json:"targets"`
}

func (r TCPPingResult) Summary() string {
	rtts := make([]*int64, 0, len(r.Targets))
	for _, target := range r.Targets {
		rtts = append(rtts, target.RTT)
	}

	return fmt.Sprintf("tcpping: port %d, %s", r.Port, rttSummary(rtts))
}

type HTTPObject struct {
	Path string `json:"path"`
	Code int    `json:"code"`
	Size int64  `json:"size"`
}

type HTTPServer struct {
	Hostname string       `json:"hostname"`
	Address  string       `json:"address"`
	Objects  []HTTPObject `json:"objects"`
}

type HTTPResult struct {
	URL string `json:"url"`
	// Duration is in milliseconds.
	Duration int64        `json:"duration"`
	Bytes    int64        `json:"bytes"`
	Servers  []HTTPServer `json:"servers"`
}

func (r HTTPResult) Summary() string {
	objects := 0
	for _, server := range r.Servers {
		objects += len(server.Objects)
	}

	return fmt.Sprintf("http: %s %d object(s) from %d server(s), %d bytes in %dms",
		r.URL, objects, len(r.Servers), r.Bytes, r.Duration)
}

type UDPStreamReport struct {
	Direction string `json:"direction"`
	RTT       *int64 `json:"rtt,omitempty"`
	Received  int    `json:"received"`
	// Jitter is the mean inter-packet delay variation in microseconds.
	Jitter int64 `json:"jitter,omitempty"`
}

type UDPStreamResult struct {
	PacketSize    int               `json:"packet_size"`
	PacketSpacing int               `json:"packet_spacing"`
	PacketCount   int               `json:"packet_count"`
	Results       []UDPStreamReport `json:"results"`
}

func (r UDPStreamResult) Summary() string {
	parts := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		loss := 0.0
		if r.PacketCount > 0 {
			loss = 100 * float64(r.PacketCount-res.Received) / float64(r.PacketCount)
		}
		parts = append(parts, fmt.Sprintf("%s received %d/%d (%.2f%% loss), jitter %dus",
			res.Direction, res.Received, r.PacketCount, loss, res.Jitter))
	}
	if len(parts) == 0 {
		parts = append(parts, "no streams")
	}

	return "udpstream: " + strings.Join(parts, ", ")
}

func rttSummary(rtts []*int64) string {
	var (
		sum      int64
		answered int
	)
	for _, rtt := range rtts {
		if rtt == nil {
			continue
		}
		sum += *rtt
		answered++
	}
	if answered == 0 {
		return fmt.Sprintf("%d target(s), no responses", len(rtts))
	}

	return fmt.Sprintf("%d target(s), %d lost, mean rtt %dus",
		len(rtts), len(rtts)-answered, sum/int64(answered))
}

func mbps(n uint64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}

	return float64(n) * 8 / d.Seconds() / 1_000_000
}
