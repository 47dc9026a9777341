// Package discovery finds devices that are waiting to be provisioned.
//
// A device in access point mode announces its portal as a "_wifiprov._tcp"
// mDNS service (see package announce). A client joined to the provisioning
// network browses for that service and gets the portal address without
// guessing it.
//
// # Usage Example
//
//	scanner := discovery.NewScanner()
//	scanner.Timeout = 5 * time.Second
//	portals, err := scanner.ScanForPortals(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, p := range portals {
//	    fmt.Println(p.Instance, p.BaseURL())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Client and device must be on the same segment (the provisioning network)
// - Firewall must allow mDNS (UDP port 5353)
package discovery
