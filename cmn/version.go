package cmn

// Version 当前版本号
const Version = "0.4.1"
