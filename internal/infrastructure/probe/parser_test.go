package probe

import (
	"testing"

	"lanmesh/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const speedtestOutput = `Ping: 12.345 ms
Download: 123.45 Mbit/s
Upload: 67.89 Mbit/s
`

func TestParseSpeedtest(t *testing.T) {
	latency, download, upload := ParseSpeedtest(speedtestOutput)

	require.NotNil(t, latency)
	require.NotNil(t, download)
	require.NotNil(t, upload)
	assert.Equal(t, 12.345, *latency)
	assert.Equal(t, 123.45, *download)
	assert.Equal(t, 67.89, *upload)
}

func TestParseSpeedtest_PartialOutput(t *testing.T) {
	latency, download, upload := ParseSpeedtest("Ping: 8.1 ms\nsomething went wrong")

	require.NotNil(t, latency)
	assert.Equal(t, 8.1, *latency)
	assert.Nil(t, download)
	assert.Nil(t, upload)
}

func TestParsePacketLoss(t *testing.T) {
	output := `10 packets transmitted, 9 received, 10% packet loss, time 9012ms
rtt min/avg/max/mdev = 11.1/12.2/13.3/0.5 ms`

	loss := ParsePacketLoss(output)
	require.NotNil(t, loss)
	assert.Equal(t, 10.0, *loss)

	assert.Nil(t, ParsePacketLoss("garbage"))
}

func TestParseArp(t *testing.T) {
	output := `router.lan (192.168.1.1) at a4:83:e7:68:e2:30 on en0 ifscope [ethernet]
divines-mbp (192.168.1.173) at 3c:22:fb:aa:bb:cc on en0 ifscope
divines-iPhone (192.168.1.174) at a8:5b:78:11:22:33 on en0 ifscope
broken-entry (192.168.1.200) at <incomplete> on en0 ifscope
divines-mbp-again (192.168.1.173) at 3c:22:fb:aa:bb:cc on en0 ifscope`

	devices := ParseArp(output)
	require.Len(t, devices, 3)

	router := devices[0]
	assert.Equal(t, "router.lan", router.Name)
	assert.Equal(t, "192.168.1.1", router.IP)
	assert.Equal(t, "a4:83:e7:68:e2:30", router.MAC)
	assert.Equal(t, domain.DeviceTypeRouter, router.Type)
	assert.True(t, router.IsEthernet)
	assert.Equal(t, domain.StatusOnline, router.Status)

	laptop := devices[1]
	assert.Equal(t, domain.DeviceTypeComputer, laptop.Type)
	assert.False(t, laptop.IsEthernet)

	phone := devices[2]
	assert.Equal(t, domain.DeviceTypeSmartphone, phone.Type)
	assert.Equal(t, "iPhone", phone.Name)

	// Duplicate IP kept the first entry; incomplete entry was skipped.
	for _, dev := range devices {
		assert.NotEqual(t, "broken-entry", dev.Name)
		assert.NotEqual(t, "divines-mbp-again", dev.Name)
	}
}

func TestParseArp_Empty(t *testing.T) {
	assert.Empty(t, ParseArp(""))
	assert.Empty(t, ParseArp("no entries here\n"))
}
