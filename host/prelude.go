package host

// prelude installs the minimal host classes the bridge is exercised against.
// Each class also carries a Symbol.toStringTag so both classification
// strategies see the same name, and is published on the global object.
const prelude = `
var window = globalThis;

class EventTarget {
	constructor() {
		this._listeners = {};
	}
	addEventListener(type, fn) {
		if (typeof fn !== "function") {
			throw new TypeError("listener is not a function");
		}
		if (!this._listeners[type]) {
			this._listeners[type] = [];
		}
		this._listeners[type].push(fn);
	}
	removeEventListener(type, fn) {
		var list = this._listeners[type];
		if (!list) {
			return;
		}
		var i = list.indexOf(fn);
		if (i >= 0) {
			list.splice(i, 1);
		}
	}
	dispatchEvent(evt) {
		if (!(evt instanceof Event)) {
			throw new TypeError("dispatchEvent expects an Event");
		}
		evt.target = this;
		var list = (this._listeners[evt.type] || []).slice();
		for (var i = 0; i < list.length; i++) {
			list[i].call(this, evt);
		}
		return !evt.defaultPrevented;
	}
}

class Node extends EventTarget {
	constructor(nodeName) {
		super();
		this.nodeName = nodeName;
		this.parentNode = null;
		this.childNodes = [];
	}
	get firstChild() {
		return this.childNodes.length > 0 ? this.childNodes[0] : null;
	}
	appendChild(child) {
		if (!(child instanceof Node)) {
			throw new DOMException("parameter is not a Node", "HierarchyRequestError");
		}
		if (child === this) {
			throw new DOMException("cannot append a node to itself", "HierarchyRequestError");
		}
		if (child.parentNode) {
			child.parentNode.removeChild(child);
		}
		child.parentNode = this;
		this.childNodes.push(child);
		return child;
	}
	removeChild(child) {
		var i = this.childNodes.indexOf(child);
		if (i < 0) {
			throw new DOMException("node is not a child", "NotFoundError");
		}
		this.childNodes.splice(i, 1);
		child.parentNode = null;
		return child;
	}
}

class Element extends Node {
	constructor(tagName) {
		super(String(tagName).toUpperCase());
		this.tagName = this.nodeName;
		this.attributes = {};
	}
	setAttribute(name, value) {
		this.attributes[name] = String(value);
	}
	getAttribute(name) {
		return Object.prototype.hasOwnProperty.call(this.attributes, name) ? this.attributes[name] : null;
	}
}

class Text extends Node {
	constructor(data) {
		super("#text");
		this.data = String(data);
	}
}

class Event {
	constructor(type, init) {
		this.type = type;
		this.bubbles = !!(init && init.bubbles);
		this.defaultPrevented = false;
		this.target = null;
	}
	preventDefault() {
		this.defaultPrevented = true;
	}
}

class CustomEvent extends Event {
	constructor(type, init) {
		super(type, init);
		this.detail = init && init.detail !== undefined ? init.detail : null;
	}
}

class DOMException extends Error {
	constructor(message, name) {
		super(message);
		this.name = name || "Error";
	}
}

[EventTarget, Node, Element, Text, Event, CustomEvent, DOMException].forEach(function (c) {
	Object.defineProperty(c.prototype, Symbol.toStringTag, { value: c.name, configurable: true });
	globalThis[c.name] = c;
});

var document = new Node("#document");
document.createElement = function (tagName) {
	return new Element(tagName);
};
document.createTextNode = function (data) {
	return new Text(data);
};
`
