package mobile

import (
	"maps"

	"midp/internal/buildinfo"
)

var defaultProperties = [][2]string{
	{"microedition.platform", buildinfo.Platform()},
	{"microedition.profiles", "MIDP-2.0"},
	{"microedition.configuration", "CLDC-1.1"},
	{"microedition.locale", "en-US"},
	{"microedition.encoding", "ISO-8859-1"},
	{"microedition.m3g.version", "1.1"},
	{"wireless.messaging.sms.smsc", "+8613800010000"},
	{"device.imei", "000000000000000"},
}

// SystemProperty looks up a system property.
func (p *Platform) SystemProperty(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.props[key]
	return v, ok
}

// SystemProperties returns a copy of all system properties.
func (p *Platform) SystemProperties() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return maps.Clone(p.props)
}

// addSystemProperty sets key unless the configuration overrides it.
func (p *Platform) addSystemProperty(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.overrides[key]; ok {
		return
	}
	p.props[key] = value
}

func (p *Platform) setSystemProperty(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.props[key] = value
}
