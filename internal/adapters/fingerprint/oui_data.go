package fingerprint

// CommonOUIs is a small bundled table of well-known OUI prefixes, used as the
// static fallback layer when the SQLite-backed OUIDatabase has no entry for a
// prefix (or was never initialized). It is intentionally a short list of
// vendors likely to show up in WiFi captures; the full IEEE registry is
// loaded into OUIDatabase by the import_oui_csv tool.
var CommonOUIs = map[string]string{
	"00:03:93": "Apple",
	"00:0A:27": "Apple",
	"00:1B:63": "Apple",
	"3C:06:30": "Apple",
	"A4:C3:61": "Apple",
	"F0:18:98": "Apple",
	"00:12:FB": "Samsung",
	"00:15:99": "Samsung",
	"5C:0A:5B": "Samsung",
	"8C:79:67": "Samsung",
	"00:1E:C2": "Samsung",
	"F8:A9:D0": "Huawei",
	"00:E0:FC": "Huawei",
	"4C:1F:CC": "Huawei",
	"28:6C:07": "Xiaomi",
	"64:09:80": "Xiaomi",
	"F8:A4:5F": "Xiaomi",
	"B0:E5:ED": "Motorola",
	"00:0C:E5": "Motorola",
	"88:07:4B": "LG Electronics",
	"A8:16:B2": "LG Electronics",
	"00:1D:D8": "Microsoft",
	"7C:1E:52": "Microsoft",
	"B8:27:EB": "Raspberry Pi Foundation",
	"DC:A6:32": "Raspberry Pi Foundation",
	"E4:5F:01": "Raspberry Pi Foundation",
	"00:1A:11": "Google",
	"F4:F5:D8": "Google",
	"3C:5A:B4": "Google",
	"00:50:56": "VMware",
	"00:0C:29": "VMware",
	"00:1C:14": "VMware",
	"08:00:27": "Oracle VirtualBox",
	"52:54:00": "QEMU/KVM",
	"00:15:5D": "Microsoft Hyper-V",
	"00:1B:21": "Intel",
	"3C:A9:F4": "Intel",
	"94:65:2D": "Intel",
	"00:24:D7": "Intel",
	"00:26:B0": "Apple",
	"00:22:6B": "Cisco",
	"00:1A:A1": "Cisco",
	"00:26:99": "Cisco",
	"F0:9F:C2": "Ubiquiti Networks",
	"24:A4:3C": "Ubiquiti Networks",
	"00:27:22": "Ubiquiti Networks",
	"90:9A:4A": "Ubiquiti Networks",
	"AC:84:C6": "TP-Link",
	"50:C7:BF": "TP-Link",
	"C4:6E:1F": "TP-Link",
	"A0:40:A0": "Netgear",
	"20:4E:7F": "Netgear",
	"84:1B:5E": "Netgear",
	"1C:7E:E5": "D-Link",
	"00:1E:58": "D-Link",
	"C8:3A:35": "D-Link",
	"00:1D:7E": "Cisco-Linksys",
	"10:DA:43": "ASUSTek",
	"2C:FD:A1": "ASUSTek",
	"00:E0:4C": "Realtek",
	"52:54:AB": "Randomized",
}

// MobileVendors is the keyword set used to recognize handheld/phone devices
// from vendor strings or capture filenames.
var MobileVendors = []string{
	"apple", "iphone", "ipad", "samsung", "huawei", "xiaomi", "oppo", "vivo",
	"oneplus", "motorola", "moto", "lg", "nokia", "sony", "realme", "honor",
}

// LaptopChipVendors recognizes the wireless-chipset vendors typical of
// laptops and desktops rather than handheld devices.
var LaptopChipVendors = []string{
	"intel", "realtek", "killer", "atheros", "broadcom", "qualcomm", "dell",
	"lenovo", "hewlett", "hp inc",
}

// NetworkEquipmentVendors recognizes access-point/router/switch manufacturers.
var NetworkEquipmentVendors = []string{
	"cisco", "aruba", "ubiquiti", "tp-link", "netgear", "d-link", "asus",
	"meraki", "ruckus", "mikrotik", "linksys", "juniper",
}

// VirtualMachineVendors recognizes hypervisor-assigned MAC prefixes.
var VirtualMachineVendors = []string{
	"vmware", "virtual", "qemu", "hyper-v", "kvm", "parallels", "virtualbox",
	"xen",
}
